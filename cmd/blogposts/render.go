package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
	"github.com/sushihentaime/blogposts/internal/userservice"
)

var (
	errNotLoggedIn = errors.New(userservice.ErrorNotAuthenticated)
	errCancelled   = errors.New("operation cancelled")
)

// responseError turns a terminal error response into the command's error.
// Silent responses come from cancellation and carry no message for the user.
func responseError(resp resource.Response) error {
	if resp.Type == resource.ResponseNone {
		return errCancelled
	}
	return errors.New(resp.Message)
}

func printResponse(w io.Writer, resp resource.Response) {
	switch resp.Type {
	case resource.ResponseToast:
		fmt.Fprintln(w, resp.Message)
	case resource.ResponseDialog:
		fmt.Fprintf(w, "\n%s\n\n", indent(resp.Message, "  "))
	}
}

func printPosts(w io.Writer, posts []storage.BlogPost) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No blog posts.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PK\tSLUG\tTITLE\tAUTHOR\tUPDATED")
	for _, p := range posts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.Pk, p.Slug, truncate(p.Title, 40), p.Username, p.DateUpdated.Format(time.DateOnly))
	}
	tw.Flush()
}

func printPost(w io.Writer, p *storage.BlogPost) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "%s (%s)\nby %s on %s\n", p.Title, p.Slug, p.Username, p.DateUpdated.Format(time.DateOnly))
	if p.Image != "" {
		fmt.Fprintln(w, p.Image)
	}
	fmt.Fprintf(w, "\n%s\n", p.Body)
}

func printAccount(w io.Writer, a *storage.AccountProperties) {
	if a == nil {
		fmt.Fprintln(w, "No account details cached.")
		return
	}
	fmt.Fprintf(w, "pk:       %d\nemail:    %s\nusername: %s\n", a.Pk, a.Email, a.Username)
}

// readImage loads the file at path as an upload. An empty path means no image.
func readImage(path string) (*api.Image, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &api.Image{Filename: filepath.Base(path), Data: data}, nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
