package models

import "time"

type PostType string

const (
	PostTypeQuestion PostType = "question"
	PostTypeThought  PostType = "thought"
)

func (t PostType) Valid() bool {
	return t == PostTypeQuestion || t == PostTypeThought
}

// Post is a question or thought. Likes is a set of user ids, Comments is the
// ordered sequence of comment ids in creation order.
type Post struct {
	ID        string    `json:"id"`
	Type      PostType  `json:"type"`
	Content   string    `json:"content"`
	CodeBlock string    `json:"code_block,omitempty"`
	Tags      []string  `json:"tags"`
	Image     string    `json:"image,omitempty"`
	AuthorID  string    `json:"author"`
	Likes     []string  `json:"likes"`
	Comments  []string  `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostSummary is a post as it appears in feeds and tag listings.
type PostSummary struct {
	ID            string      `json:"id"`
	Type          PostType    `json:"type"`
	Content       string      `json:"content"`
	CodeBlock     string      `json:"code_block,omitempty"`
	Tags          []string    `json:"tags"`
	Image         string      `json:"image,omitempty"`
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// PostDetail is a single post with its comments resolved.
type PostDetail struct {
	PostSummary
	Likes    []string      `json:"likes"`
	Comments []CommentView `json:"comments"`
}

// Summarize projects p with the given author.
func (p *Post) Summarize(author UserCompact) PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		ID:            p.ID,
		Type:          p.Type,
		Content:       p.Content,
		CodeBlock:     p.CodeBlock,
		Tags:          tags,
		Image:         p.Image,
		Author:        author,
		LikesCount:    len(p.Likes),
		CommentsCount: len(p.Comments),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// HasTag reports whether p carries tag (exact, case-sensitive).
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCount is one row of the trending-topics aggregation.
type TagCount struct {
	Tag       string `json:"tag"`
	PostCount int64  `json:"post_count"`
}

// TagPage is one page of posts carrying a tag.
type TagPage struct {
	Posts      []PostSummary `json:"posts"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
	HasMore    bool          `json:"has_more"`
}

// CreatePostRequest defines the request body for creating a new post. It binds
// from JSON or from a multipart form carrying an optional "image" file.
type CreatePostRequest struct {
	Type      string   `json:"type" form:"type" validate:"required,oneof=question thought"`
	Content   string   `json:"content" form:"content" validate:"required,min=1,max=5000"`
	CodeBlock string   `json:"code_block,omitempty" form:"code_block" validate:"omitempty,max=20000"`
	Tags      []string `json:"tags,omitempty" form:"tags" validate:"omitempty,max=10,dive,max=40"`
	Image     string   `json:"image,omitempty" form:"image_url" validate:"omitempty,url"`
}
