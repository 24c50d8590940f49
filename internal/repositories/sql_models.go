package repositories

import (
	"time"

	"github.com/anonto42/codecircle/backend/internal/models"
)

// Row types for the relational backends. Membership sets are normalized into
// one memberships table keyed by (kind, container_id, member_id); the
// autoincrement id keeps insertion order for post comments.

type sqlUser struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	Name        string  `gorm:"not null"`
	Email       string  `gorm:"uniqueIndex;not null"`
	Password    string  `gorm:"not null;default:''"`
	Avatar      string  `gorm:"not null;default:''"`
	FirebaseUID *string `gorm:"uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (sqlUser) TableName() string { return "users" }

type sqlPost struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Type      string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CodeBlock string    `gorm:"type:text;not null;default:''"`
	Image     string    `gorm:"not null;default:''"`
	AuthorID  string    `gorm:"type:varchar(36);index;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (sqlPost) TableName() string { return "posts" }

type sqlPostTag struct {
	PostID   string `gorm:"primaryKey;type:varchar(36)"`
	Tag      string `gorm:"primaryKey;index"`
	Position int    `gorm:"not null"`
}

func (sqlPostTag) TableName() string { return "post_tags" }

type sqlComment struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Content   string `gorm:"type:text;not null"`
	AuthorID  string `gorm:"type:varchar(36);not null"`
	PostID    string `gorm:"type:varchar(36);index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sqlComment) TableName() string { return "comments" }

type membership struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Kind        string `gorm:"uniqueIndex:idx_membership;not null"`
	ContainerID string `gorm:"uniqueIndex:idx_membership;type:varchar(36);not null"`
	MemberID    string `gorm:"uniqueIndex:idx_membership;type:varchar(36);not null"`
}

func (membership) TableName() string { return "memberships" }

// sets indexes member ids by kind and container, in insertion order.
type sets map[SetKind]map[string][]string

func (s sets) get(kind SetKind, containerID string) []string {
	if members := s[kind][containerID]; members != nil {
		return members
	}
	return []string{}
}

func (u *sqlUser) model(s sets) *models.User {
	user := &models.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Avatar:    u.Avatar,
		Followers: s.get(UserFollowers, u.ID),
		Following: s.get(UserFollowing, u.ID),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
	if u.FirebaseUID != nil {
		user.FirebaseUID = *u.FirebaseUID
	}
	return user
}

func (p *sqlPost) model(tags []string, s sets) *models.Post {
	if tags == nil {
		tags = []string{}
	}
	return &models.Post{
		ID:        p.ID,
		Type:      models.PostType(p.Type),
		Content:   p.Content,
		CodeBlock: p.CodeBlock,
		Tags:      tags,
		Image:     p.Image,
		AuthorID:  p.AuthorID,
		Likes:     s.get(PostLikes, p.ID),
		Comments:  s.get(PostComments, p.ID),
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func (c *sqlComment) model(s sets) *models.Comment {
	return &models.Comment{
		ID:        c.ID,
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		PostID:    c.PostID,
		Likes:     s.get(CommentLikes, c.ID),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func firebaseUIDPtr(uid string) *string {
	if uid == "" {
		return nil
	}
	return &uid
}
