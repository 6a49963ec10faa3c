package blogservice

import (
	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func (s *BlogService) toBlogPost(r api.BlogSearchResponse) storage.BlogPost {
	return newBlogPost(s.logger, r.Pk, r.Title, r.Slug, r.Body, r.Image, r.DateUpdated, r.Username)
}

func newBlogPost(logger *zap.Logger, pk int, title, slug, body, image string, dateUpdated api.DateUpdated, username string) storage.BlogPost {
	updated, err := dateUpdated.Time()
	if err != nil {
		logger.Warn("unparseable date_updated", zap.String("slug", slug), zap.String("value", string(dateUpdated)), zap.Error(err))
	}

	return storage.BlogPost{
		Pk:          pk,
		Title:       title,
		Slug:        slug,
		Body:        body,
		Image:       image,
		DateUpdated: updated,
		Username:    username,
	}
}

func fromCreateUpdateResponse(logger *zap.Logger, r *api.BlogCreateUpdateResponse) storage.BlogPost {
	return newBlogPost(logger, r.Pk, r.Title, r.Slug, r.Body, r.Image, r.DateUpdated, r.Username)
}
