package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/codecircle/backend/internal/models"
)

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password"`
	Avatar      string             `bson:"avatar"`
	FirebaseUID string             `bson:"firebase_uid,omitempty"`
	Followers   []string           `bson:"followers"`
	Following   []string           `bson:"following"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		Avatar:      d.Avatar,
		FirebaseUID: d.FirebaseUID,
		Followers:   nonNil(d.Followers),
		Following:   nonNil(d.Following),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Type      string             `bson:"type"`
	Content   string             `bson:"content"`
	CodeBlock string             `bson:"code_block,omitempty"`
	Tags      []string           `bson:"tags"`
	Image     string             `bson:"image,omitempty"`
	Author    string             `bson:"author"`
	Likes     []string           `bson:"likes"`
	Comments  []string           `bson:"comments"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *postDoc) model() *models.Post {
	return &models.Post{
		ID:        d.ID.Hex(),
		Type:      models.PostType(d.Type),
		Content:   d.Content,
		CodeBlock: d.CodeBlock,
		Tags:      nonNil(d.Tags),
		Image:     d.Image,
		AuthorID:  d.Author,
		Likes:     nonNil(d.Likes),
		Comments:  nonNil(d.Comments),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	Author    string             `bson:"author"`
	Post      string             `bson:"post"`
	Likes     []string           `bson:"likes"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *commentDoc) model() *models.Comment {
	return &models.Comment{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		AuthorID:  d.Author,
		PostID:    d.Post,
		Likes:     nonNil(d.Likes),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// objectID parses a hex id. A malformed id cannot name a stored document, so
// it reports ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return objID, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, objID)
		}
	}
	return out
}

// MongoStore implements Store on three MongoDB collections: users, posts and
// comments. Membership sets live as arrays inside their container documents.
type MongoStore struct {
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
}

// NewMongoStore creates a new MongoStore
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
	}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "firebase_uid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	_, err = s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "create post indexes")
	}
	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return errors.Wrap(err, "create comment indexes")
}

// CreateUser creates a new user in MongoDB
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := userDoc{
		ID:          primitive.NewObjectID(),
		Name:        user.Name,
		Email:       user.Email,
		Password:    user.Password,
		Avatar:      user.Avatar,
		FirebaseUID: user.FirebaseUID,
		Followers:   nonNil(user.Followers),
		Following:   nonNil(user.Following),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	*user = *doc.model()
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return doc.model(), nil
}

// GetUserByID retrieves a user by ID from MongoDB
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: objID}})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "firebase_uid", Value: uid}})
}

func (s *MongoStore) findUsers(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	users := make([]models.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].model()
	}
	return users, nil
}

func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	objIDs := objectIDs(ids)
	if len(objIDs) == 0 {
		return []models.User{}, nil
	}
	return s.findUsers(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: objIDs}}}})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.findUsers(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// UpdateUser updates profile fields of an existing user in MongoDB
func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	objID, err := objectID(user.ID)
	if err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	set := bson.D{
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "avatar", Value: user.Avatar},
		{Key: "updated_at", Value: user.UpdatedAt},
	}
	update := bson.D{{Key: "$set", Value: set}}
	if user.FirebaseUID != "" {
		update[0].Value = append(set, bson.E{Key: "firebase_uid", Value: user.FirebaseUID})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "firebase_uid", Value: ""}}})
	}

	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: objID}}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "update user")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePost creates a new post in MongoDB
func (s *MongoStore) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	doc := postDoc{
		ID:        primitive.NewObjectID(),
		Type:      string(post.Type),
		Content:   post.Content,
		CodeBlock: post.CodeBlock,
		Tags:      nonNil(post.Tags),
		Image:     post.Image,
		Author:    post.AuthorID,
		Likes:     nonNil(post.Likes),
		Comments:  nonNil(post.Comments),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert post")
	}
	*post = *doc.model()
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (s *MongoStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err = s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: objID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find post")
	}
	return doc.model(), nil
}

// DeletePost deletes a post by ID from MongoDB
func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: objID}})
	if err != nil {
		return errors.Wrap(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// postFilter translates the filtering part of q into a query document.
func postFilter(q PostQuery) bson.D {
	filter := bson.D{}
	if q.RestrictAuthors {
		authors := q.AuthorIDs
		if authors == nil {
			authors = []string{}
		}
		filter = append(filter, bson.E{Key: "author", Value: bson.D{{Key: "$in", Value: authors}}})
	}
	if q.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: q.Tag})
	}
	if !q.Since.IsZero() {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: q.Since}}})
	}
	return filter
}

// likesPipeline orders matching posts by their like count.
func likesPipeline(q PostQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: postFilter(q)}},
		{{Key: "$addFields", Value: bson.D{{Key: "likes_count", Value: bson.D{
			{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}},
		}}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "likes_count", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}}},
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(q.Skip)}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(q.Limit)}})
	}
	return pipeline
}

func (s *MongoStore) FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	var (
		cursor *mongo.Cursor
		err    error
	)
	if q.Sort == SortLikes {
		cursor, err = s.posts.Aggregate(ctx, likesPipeline(q))
	} else {
		findOptions := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetSkip(int64(q.Skip))
		if q.Limit > 0 {
			findOptions.SetLimit(int64(q.Limit))
		}
		cursor, err = s.posts.Find(ctx, postFilter(q), findOptions)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find posts")
	}
	defer cursor.Close(ctx)

	var docs []postDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode posts")
	}
	posts := make([]models.Post, len(docs))
	for i := range docs {
		posts[i] = *docs[i].model()
	}
	return posts, nil
}

func (s *MongoStore) CountPosts(ctx context.Context, q PostQuery) (int64, error) {
	n, err := s.posts.CountDocuments(ctx, postFilter(q))
	return n, errors.Wrap(err, "count posts")
}

// tagCountsPipeline counts each tag once per post; tags repeated inside one
// post are collapsed by $setUnion before unwinding.
func tagCountsPipeline(since time.Time, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if !since.IsZero() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
		}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$project", Value: bson.D{{Key: "tags", Value: bson.D{
			{Key: "$setUnion", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$tags", bson.A{}}}}, bson.A{}}},
		}}}}},
		bson.D{{Key: "$unwind", Value: "$tags"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	)
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	return pipeline
}

func (s *MongoStore) TagCounts(ctx context.Context, since time.Time, limit int) ([]models.TagCount, error) {
	cursor, err := s.posts.Aggregate(ctx, tagCountsPipeline(since, limit))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate tags")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Tag   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode tag counts")
	}
	counts := make([]models.TagCount, len(rows))
	for i, row := range rows {
		counts[i] = models.TagCount{Tag: row.Tag, PostCount: row.Count}
	}
	return counts, nil
}

// CreateComment creates a new comment in MongoDB
func (s *MongoStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		Content:   comment.Content,
		Author:    comment.AuthorID,
		Post:      comment.PostID,
		Likes:     nonNil(comment.Likes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert comment")
	}
	*comment = *doc.model()
	return nil
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (s *MongoStore) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc commentDoc
	if err = s.comments.FindOne(ctx, bson.D{{Key: "_id", Value: objID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find comment")
	}
	return doc.model(), nil
}

func (s *MongoStore) findComments(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.Comment, error) {
	cursor, err := s.comments.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "find comments")
	}
	defer cursor.Close(ctx)

	var docs []commentDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode comments")
	}
	comments := make([]models.Comment, len(docs))
	for i := range docs {
		comments[i] = *docs[i].model()
	}
	return comments, nil
}

func (s *MongoStore) GetCommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	objIDs := objectIDs(ids)
	if len(objIDs) == 0 {
		return []models.Comment{}, nil
	}
	found, err := s.findComments(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: objIDs}}}})
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

// GetCommentsByPostID retrieves comments for a specific post from MongoDB
func (s *MongoStore) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.findComments(ctx, bson.D{{Key: "post", Value: postID}}, findOptions)
}

// UpdateCommentContent updates the content of a comment and returns the new document.
func (s *MongoStore) UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	var doc commentDoc
	err = s.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: objID}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update comment")
	}
	return doc.model(), nil
}

// DeleteComment deletes a comment by ID from MongoDB
func (s *MongoStore) DeleteComment(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: objID}})
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// setLocation maps a container kind to its collection and array field.
func (s *MongoStore) setLocation(kind SetKind) (*mongo.Collection, string, error) {
	switch kind {
	case PostLikes:
		return s.posts, "likes", nil
	case PostComments:
		return s.posts, "comments", nil
	case CommentLikes:
		return s.comments, "likes", nil
	case UserFollowers:
		return s.users, "followers", nil
	case UserFollowing:
		return s.users, "following", nil
	}
	return nil, "", errors.Errorf("unknown set kind %q", kind)
}

func memberList(doc bson.M, field string) []string {
	arr, _ := doc[field].(bson.A)
	members := make([]string, 0, len(arr))
	for _, v := range arr {
		if member, ok := v.(string); ok {
			members = append(members, member)
		}
	}
	return members
}

// updateSet applies update to one container and returns its resulting members.
func (s *MongoStore) updateSet(ctx context.Context, c Container, update interface{}) ([]string, error) {
	coll, field, err := s.setLocation(c.Kind)
	if err != nil {
		return nil, err
	}
	objID, err := objectID(c.ID)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: field, Value: 1}})

	var doc bson.M
	if err = coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: objID}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "update %s", c.Kind)
	}
	return memberList(doc, field), nil
}

func (s *MongoStore) AddToSet(ctx context.Context, c Container, member string) (int, error) {
	_, field, err := s.setLocation(c.Kind)
	if err != nil {
		return 0, err
	}
	members, err := s.updateSet(ctx, c, bson.D{{Key: "$addToSet", Value: bson.D{{Key: field, Value: member}}}})
	return len(members), err
}

func (s *MongoStore) RemoveFromSet(ctx context.Context, c Container, member string) (int, error) {
	_, field, err := s.setLocation(c.Kind)
	if err != nil {
		return 0, err
	}
	members, err := s.updateSet(ctx, c, bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: member}}}})
	return len(members), err
}

// toggleUpdate builds a pipeline update that removes member from field when
// present and appends it otherwise, evaluated server-side in one write.
func toggleUpdate(field, member string) mongo.Pipeline {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{member, current}}}},
			{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: current},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", member}}}},
			}}}},
			{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{member}}}}},
		}}}}}}},
	}
}

func (s *MongoStore) ToggleInSet(ctx context.Context, c Container, member string) (bool, int, error) {
	_, field, err := s.setLocation(c.Kind)
	if err != nil {
		return false, 0, err
	}
	members, err := s.updateSet(ctx, c, toggleUpdate(field, member))
	if err != nil {
		return false, 0, err
	}
	return indexOf(members, member) >= 0, len(members), nil
}

func (s *MongoStore) IsMember(ctx context.Context, c Container, member string) (bool, error) {
	coll, field, err := s.setLocation(c.Kind)
	if err != nil {
		return false, err
	}
	objID, err := objectID(c.ID)
	if err != nil {
		return false, err
	}
	var doc bson.M
	err = coll.FindOne(ctx, bson.D{{Key: "_id", Value: objID}},
		options.FindOne().SetProjection(bson.D{{Key: field, Value: 1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrNotFound
		}
		return false, errors.Wrapf(err, "read %s", c.Kind)
	}
	return indexOf(memberList(doc, field), member) >= 0, nil
}
