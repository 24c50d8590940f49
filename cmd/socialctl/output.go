package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/anonto42/codecircle/backend/internal/models"
)

func renderTrending(w io.Writer, topics []models.TagCount) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Tag", "Posts"})
	table.SetAutoWrapText(false)
	for i, t := range topics {
		table.Append([]string{strconv.Itoa(i + 1), t.Tag, strconv.FormatInt(t.PostCount, 10)})
	}
	table.Render()
}

func renderTagPage(w io.Writer, page *models.TagPage) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Author", "Type", "Likes", "Content"})
	table.SetAutoWrapText(false)
	for _, p := range page.Posts {
		table.Append([]string{
			p.ID,
			p.Author.Name,
			string(p.Type),
			strconv.Itoa(p.LikesCount),
			excerpt(p.Content, 40),
		})
	}
	table.Render()
	fmt.Fprintf(w, "page %d of %d, %d posts in total\n", page.Page, page.TotalPages, page.TotalCount)
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
