package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/codecircle/backend/internal/models"
)

// SQLStore implements Store on GORM. It runs on PostgreSQL in production and on
// SQLite for local runs and tests.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore creates a new SQLStore
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates or updates the tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(&sqlUser{}, &sqlPost{}, &sqlPostTag{}, &sqlComment{}, &membership{})
	return errors.Wrap(err, "auto migrate")
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// loadSets reads the members of every (kind, container) pair in one query.
func loadSets(tx *gorm.DB, kinds []SetKind, containerIDs []string) (sets, error) {
	out := sets{}
	if len(containerIDs) == 0 {
		return out, nil
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	var rows []membership
	err := tx.Where("kind IN ? AND container_id IN ?", names, containerIDs).Order("id").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load memberships")
	}
	for _, row := range rows {
		kind := SetKind(row.Kind)
		if out[kind] == nil {
			out[kind] = map[string][]string{}
		}
		out[kind][row.ContainerID] = append(out[kind][row.ContainerID], row.MemberID)
	}
	return out, nil
}

func (s *SQLStore) hydrateUsers(tx *gorm.DB, rows []sqlUser) ([]models.User, error) {
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	memberSets, err := loadSets(tx, []SetKind{UserFollowers, UserFollowing}, ids)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].model(memberSets)
	}
	return users, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	now := s.now()
	row := sqlUser{
		ID:          uuid.New().String(),
		Name:        user.Name,
		Email:       user.Email,
		Password:    user.Password,
		Avatar:      user.Avatar,
		FirebaseUID: firebaseUIDPtr(user.FirebaseUID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	*user = *row.model(sets{})
	return nil
}

func (s *SQLStore) findUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	tx := s.db.WithContext(ctx)
	var row sqlUser
	if err := tx.Where(query, arg).First(&row).Error; err != nil {
		return nil, errors.Wrap(notFound(err), "find user")
	}
	users, err := s.hydrateUsers(tx, []sqlUser{row})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *SQLStore) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, "firebase_uid = ?", uid)
}

func (s *SQLStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	tx := s.db.WithContext(ctx)
	var rows []sqlUser
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	return s.hydrateUsers(tx, rows)
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]models.User, error) {
	tx := s.db.WithContext(ctx)
	var rows []sqlUser
	if err := tx.Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return s.hydrateUsers(tx, rows)
}

func (s *SQLStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = s.now()
	res := s.db.WithContext(ctx).Model(&sqlUser{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":         user.Name,
		"email":        user.Email,
		"avatar":       user.Avatar,
		"firebase_uid": firebaseUIDPtr(user.FirebaseUID),
		"updated_at":   user.UpdatedAt,
	})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return ErrDuplicate
		}
		return errors.Wrap(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// dedupe drops repeated tags keeping first occurrences.
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *SQLStore) CreatePost(ctx context.Context, post *models.Post) error {
	now := s.now()
	row := sqlPost{
		ID:        uuid.New().String(),
		Type:      string(post.Type),
		Content:   post.Content,
		CodeBlock: post.CodeBlock,
		Image:     post.Image,
		AuthorID:  post.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tags := dedupe(post.Tags)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		tagRows := make([]sqlPostTag, len(tags))
		for i, t := range tags {
			tagRows[i] = sqlPostTag{PostID: row.ID, Tag: t, Position: i}
		}
		return tx.Create(&tagRows).Error
	})
	if err != nil {
		return errors.Wrap(err, "insert post")
	}
	*post = *row.model(tags, sets{})
	return nil
}

func (s *SQLStore) hydratePosts(tx *gorm.DB, rows []sqlPost) ([]models.Post, error) {
	if len(rows) == 0 {
		return []models.Post{}, nil
	}
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var tagRows []sqlPostTag
	if err := tx.Where("post_id IN ?", ids).Order("position").Find(&tagRows).Error; err != nil {
		return nil, errors.Wrap(err, "load tags")
	}
	tags := make(map[string][]string, len(rows))
	for _, t := range tagRows {
		tags[t.PostID] = append(tags[t.PostID], t.Tag)
	}

	memberSets, err := loadSets(tx, []SetKind{PostLikes, PostComments}, ids)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(rows))
	for i := range rows {
		posts[i] = *rows[i].model(tags[rows[i].ID], memberSets)
	}
	return posts, nil
}

func (s *SQLStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	tx := s.db.WithContext(ctx)
	var row sqlPost
	if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, errors.Wrap(notFound(err), "find post")
	}
	posts, err := s.hydratePosts(tx, []sqlPost{row})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// DeletePost removes the post with its tags, likes and comment references.
// The comment rows themselves are removed by the caller.
func (s *SQLStore) DeletePost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&sqlPost{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete post")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&sqlPostTag{}).Error; err != nil {
			return errors.Wrap(err, "delete post tags")
		}
		err := tx.Where("kind IN ? AND container_id = ?", []string{string(PostLikes), string(PostComments)}, id).
			Delete(&membership{}).Error
		return errors.Wrap(err, "delete post memberships")
	})
}

// filterPosts applies the filtering part of q. ok is false when q can match nothing.
func filterPosts(tx *gorm.DB, q PostQuery) (*gorm.DB, bool) {
	if q.RestrictAuthors {
		if len(q.AuthorIDs) == 0 {
			return tx, false
		}
		tx = tx.Where("posts.author_id IN ?", q.AuthorIDs)
	}
	if q.Tag != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag = ?)", q.Tag)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("posts.created_at >= ?", q.Since.UTC())
	}
	return tx, true
}

func (s *SQLStore) FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	base := s.db.WithContext(ctx)
	tx, ok := filterPosts(base.Model(&sqlPost{}), q)
	if !ok {
		return []models.Post{}, nil
	}
	if q.Sort == SortLikes {
		tx = tx.Select("posts.*, (SELECT COUNT(*) FROM memberships m WHERE m.kind = ? AND m.container_id = posts.id) AS likes_count",
			string(PostLikes)).Order("likes_count DESC")
	}
	tx = tx.Order("posts.created_at DESC").Order("posts.id DESC")
	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []sqlPost
	if err := tx.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find posts")
	}
	return s.hydratePosts(base, rows)
}

func (s *SQLStore) CountPosts(ctx context.Context, q PostQuery) (int64, error) {
	tx, ok := filterPosts(s.db.WithContext(ctx).Model(&sqlPost{}), q)
	if !ok {
		return 0, nil
	}
	var n int64
	err := tx.Count(&n).Error
	return n, errors.Wrap(err, "count posts")
}

func (s *SQLStore) TagCounts(ctx context.Context, since time.Time, limit int) ([]models.TagCount, error) {
	tx := s.db.WithContext(ctx).
		Table("post_tags").
		Select("post_tags.tag AS tag, COUNT(DISTINCT post_tags.post_id) AS post_count").
		Joins("JOIN posts ON posts.id = post_tags.post_id")
	if !since.IsZero() {
		tx = tx.Where("posts.created_at >= ?", since.UTC())
	}
	tx = tx.Group("post_tags.tag").Order("post_count DESC").Order("tag ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []models.TagCount
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate tags")
	}
	if rows == nil {
		rows = []models.TagCount{}
	}
	return rows, nil
}

func (s *SQLStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := s.now()
	row := sqlComment{
		ID:        uuid.New().String(),
		Content:   comment.Content,
		AuthorID:  comment.AuthorID,
		PostID:    comment.PostID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert comment")
	}
	*comment = *row.model(sets{})
	return nil
}

func (s *SQLStore) hydrateComments(tx *gorm.DB, rows []sqlComment) ([]models.Comment, error) {
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	memberSets, err := loadSets(tx, []SetKind{CommentLikes}, ids)
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, len(rows))
	for i := range rows {
		comments[i] = *rows[i].model(memberSets)
	}
	return comments, nil
}

func (s *SQLStore) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	tx := s.db.WithContext(ctx)
	var row sqlComment
	if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, errors.Wrap(notFound(err), "find comment")
	}
	comments, err := s.hydrateComments(tx, []sqlComment{row})
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (s *SQLStore) GetCommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}
	tx := s.db.WithContext(ctx)
	var rows []sqlComment
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find comments")
	}
	found, err := s.hydrateComments(tx, rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Comment, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]models.Comment, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (s *SQLStore) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	tx := s.db.WithContext(ctx)
	var rows []sqlComment
	if err := tx.Where("post_id = ?", postID).Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find comments")
	}
	return s.hydrateComments(tx, rows)
}

func (s *SQLStore) UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error) {
	res := s.db.WithContext(ctx).Model(&sqlComment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"content":    content,
		"updated_at": s.now(),
	})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update comment")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetCommentByID(ctx, id)
}

func (s *SQLStore) DeleteComment(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&sqlComment{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete comment")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		err := tx.Where("kind = ? AND container_id = ?", string(CommentLikes), id).Delete(&membership{}).Error
		return errors.Wrap(err, "delete comment likes")
	})
}

// requireContainer checks that the document holding c exists.
func requireContainer(tx *gorm.DB, c Container) error {
	var model interface{}
	switch c.Kind {
	case PostLikes, PostComments:
		model = &sqlPost{}
	case CommentLikes:
		model = &sqlComment{}
	case UserFollowers, UserFollowing:
		model = &sqlUser{}
	default:
		return errors.Errorf("unknown set kind %q", c.Kind)
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", c.ID).Count(&n).Error; err != nil {
		return errors.Wrapf(err, "lookup %s container", c.Kind)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func countMembers(tx *gorm.DB, c Container) (int, error) {
	var n int64
	err := tx.Model(&membership{}).Where("kind = ? AND container_id = ?", string(c.Kind), c.ID).Count(&n).Error
	return int(n), errors.Wrapf(err, "count %s", c.Kind)
}

func insertMember(tx *gorm.DB, c Container, member string) error {
	row := membership{Kind: string(c.Kind), ContainerID: c.ID, MemberID: member}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	return errors.Wrapf(err, "add to %s", c.Kind)
}

func deleteMember(tx *gorm.DB, c Container, member string) (bool, error) {
	res := tx.Where("kind = ? AND container_id = ? AND member_id = ?", string(c.Kind), c.ID, member).Delete(&membership{})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "remove from %s", c.Kind)
	}
	return res.RowsAffected > 0, nil
}

func (s *SQLStore) AddToSet(ctx context.Context, c Container, member string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireContainer(tx, c); err != nil {
			return err
		}
		if err := insertMember(tx, c, member); err != nil {
			return err
		}
		var err error
		count, err = countMembers(tx, c)
		return err
	})
	return count, err
}

func (s *SQLStore) RemoveFromSet(ctx context.Context, c Container, member string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireContainer(tx, c); err != nil {
			return err
		}
		if _, err := deleteMember(tx, c, member); err != nil {
			return err
		}
		var err error
		count, err = countMembers(tx, c)
		return err
	})
	return count, err
}

func (s *SQLStore) ToggleInSet(ctx context.Context, c Container, member string) (bool, int, error) {
	var (
		present bool
		count   int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireContainer(tx, c); err != nil {
			return err
		}
		removed, err := deleteMember(tx, c, member)
		if err != nil {
			return err
		}
		if !removed {
			if err = insertMember(tx, c, member); err != nil {
				return err
			}
			present = true
		}
		count, err = countMembers(tx, c)
		return err
	})
	return present, count, err
}

func (s *SQLStore) IsMember(ctx context.Context, c Container, member string) (bool, error) {
	tx := s.db.WithContext(ctx)
	if err := requireContainer(tx, c); err != nil {
		return false, err
	}
	var n int64
	err := tx.Model(&membership{}).
		Where("kind = ? AND container_id = ? AND member_id = ?", string(c.Kind), c.ID, member).
		Count(&n).Error
	return n > 0, errors.Wrapf(err, "read %s", c.Kind)
}
