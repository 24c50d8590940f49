package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anonto42/codecircle/backend/internal/models"
)

// MemoryStore implements Store with in-process maps. Documents are copied in
// and out so callers never share slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used to stamp new and updated documents.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = cloneStrings(u.Followers)
	c.Following = cloneStrings(u.Following)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = cloneStrings(p.Tags)
	c.Likes = cloneStrings(p.Likes)
	c.Comments = cloneStrings(p.Comments)
	return &c
}

func cloneComment(cm *models.Comment) *models.Comment {
	c := *cm
	c.Likes = cloneStrings(cm.Likes)
	return &c
}

// stamp fills ID and timestamps the way the database backends do.
func (s *MemoryStore) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	now := s.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
		if user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID {
			return ErrDuplicate
		}
	}
	s.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if user.Followers == nil {
		user.Followers = []string{}
	}
	if user.Following == nil {
		user.Following = []string{}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if uid != "" && u.FirebaseUID == uid {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(other.Email, user.Email) {
			return ErrDuplicate
		}
		if user.FirebaseUID != "" && other.FirebaseUID == user.FirebaseUID {
			return ErrDuplicate
		}
	}
	u.Name = user.Name
	u.Email = user.Email
	u.Avatar = user.Avatar
	u.FirebaseUID = user.FirebaseUID
	u.UpdatedAt = s.now()
	user.UpdatedAt = u.UpdatedAt
	return nil
}

func (s *MemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *MemoryStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// matches applies q's filters to p.
func matches(p *models.Post, q PostQuery, authors map[string]struct{}) bool {
	if q.RestrictAuthors {
		if _, ok := authors[p.AuthorID]; !ok {
			return false
		}
	}
	if q.Tag != "" && !p.HasTag(q.Tag) {
		return false
	}
	if !q.Since.IsZero() && p.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}

func (s *MemoryStore) filterPosts(q PostQuery) []*models.Post {
	authors := make(map[string]struct{}, len(q.AuthorIDs))
	for _, id := range q.AuthorIDs {
		authors[id] = struct{}{}
	}
	var out []*models.Post
	for _, p := range s.posts {
		if matches(p, q, authors) {
			out = append(out, p)
		}
	}
	return out
}

func (s *MemoryStore) FindPosts(_ context.Context, q PostQuery) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.filterPosts(q)
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if q.Sort == SortLikes && len(a.Likes) != len(b.Likes) {
			return len(a.Likes) > len(b.Likes)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if q.Skip >= len(found) {
		return []models.Post{}, nil
	}
	found = found[q.Skip:]
	if q.Limit > 0 && len(found) > q.Limit {
		found = found[:q.Limit]
	}
	out := make([]models.Post, len(found))
	for i, p := range found {
		out[i] = *clonePost(p)
	}
	return out, nil
}

func (s *MemoryStore) CountPosts(_ context.Context, q PostQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterPosts(q))), nil
}

func (s *MemoryStore) TagCounts(_ context.Context, since time.Time, limit int) ([]models.TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, p := range s.filterPosts(PostQuery{Since: since}) {
		seen := make(map[string]struct{}, len(p.Tags))
		for _, tag := range p.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, PostCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostCount != out[j].PostCount {
			return out[i].PostCount > out[j].PostCount
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *MemoryStore) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *MemoryStore) GetCommentsByIDs(_ context.Context, ids []string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, *cloneComment(c))
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, *cloneComment(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateCommentContent(_ context.Context, id, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = s.now()
	return cloneComment(c), nil
}

func (s *MemoryStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// members returns a pointer to the slice backing c. Callers hold s.mu.
func (s *MemoryStore) members(c Container) (*[]string, error) {
	switch c.Kind {
	case PostLikes, PostComments:
		p, ok := s.posts[c.ID]
		if !ok {
			return nil, ErrNotFound
		}
		if c.Kind == PostLikes {
			return &p.Likes, nil
		}
		return &p.Comments, nil
	case CommentLikes:
		cm, ok := s.comments[c.ID]
		if !ok {
			return nil, ErrNotFound
		}
		return &cm.Likes, nil
	case UserFollowers, UserFollowing:
		u, ok := s.users[c.ID]
		if !ok {
			return nil, ErrNotFound
		}
		if c.Kind == UserFollowers {
			return &u.Followers, nil
		}
		return &u.Following, nil
	}
	return nil, ErrNotFound
}

func indexOf(set []string, member string) int {
	for i, m := range set {
		if m == member {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) AddToSet(_ context.Context, c Container, member string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.members(c)
	if err != nil {
		return 0, err
	}
	if indexOf(*set, member) < 0 {
		*set = append(*set, member)
	}
	return len(*set), nil
}

func (s *MemoryStore) RemoveFromSet(_ context.Context, c Container, member string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.members(c)
	if err != nil {
		return 0, err
	}
	if i := indexOf(*set, member); i >= 0 {
		*set = append((*set)[:i:i], (*set)[i+1:]...)
	}
	return len(*set), nil
}

func (s *MemoryStore) ToggleInSet(_ context.Context, c Container, member string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.members(c)
	if err != nil {
		return false, 0, err
	}
	if i := indexOf(*set, member); i >= 0 {
		*set = append((*set)[:i:i], (*set)[i+1:]...)
		return false, len(*set), nil
	}
	*set = append(*set, member)
	return true, len(*set), nil
}

func (s *MemoryStore) IsMember(_ context.Context, c Container, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, err := s.members(c)
	if err != nil {
		return false, err
	}
	return indexOf(*set, member) >= 0, nil
}
