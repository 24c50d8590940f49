package main

import (
	"context"
	"fmt"

	"github.com/anonto42/codecircle/backend/internal/app"
	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/services"
)

var seedTags = [][]string{
	{"go", "concurrency"},
	{"go", "testing"},
	{"mongodb", "indexes"},
	{"postgres"},
	{"api", "go"},
}

type seedResult struct {
	Users int
	Posts int
}

// seed creates users demo1..demoN, each following the next one, and posts
// cycling through a few tag sets. Users that already exist are reused.
func seed(ctx context.Context, a *app.App, users, postsPerUser int) (seedResult, error) {
	var res seedResult
	if users <= 0 || postsPerUser < 0 {
		return res, apperror.NewInvalidArgument("users must be positive and posts not negative")
	}

	ids := make([]string, 0, users)
	for i := 1; i <= users; i++ {
		in := services.RegisterInput{
			Name:     fmt.Sprintf("Demo User %d", i),
			Email:    fmt.Sprintf("demo%d@codecircle.dev", i),
			Password: "demo-password",
		}
		user, err := a.Users.Register(ctx, in)
		switch {
		case apperror.Is(err, apperror.Conflict):
			if user, err = a.Users.Login(ctx, in.Email, in.Password); err != nil {
				return res, fmt.Errorf("demo user %s exists with another password: %w", in.Email, err)
			}
		case err != nil:
			return res, err
		default:
			res.Users++
		}
		ids = append(ids, user.ID)
	}

	for i, id := range ids {
		if len(ids) > 1 {
			if _, err := a.Toggles.Follow(ctx, id, ids[(i+1)%len(ids)]); err != nil {
				return res, err
			}
		}
		for j := 0; j < postsPerUser; j++ {
			postType := models.PostTypeThought
			if j%2 == 1 {
				postType = models.PostTypeQuestion
			}
			_, err := a.Posts.Create(ctx, id, services.CreatePostInput{
				Type:    postType,
				Content: fmt.Sprintf("Demo %s #%d from user %d", postType, j+1, i+1),
				Tags:    seedTags[(i+j)%len(seedTags)],
			})
			if err != nil {
				return res, err
			}
			res.Posts++
		}
	}
	return res, nil
}
