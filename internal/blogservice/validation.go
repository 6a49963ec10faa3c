package blogservice

import (
	"errors"

	"github.com/sushihentaime/blogposts/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(v.NotBlank(title), "title", "Title must be provided.")
	v.Check(v.CheckStringLength(title, 0, 100), "title", "Title must be at most 100 characters long.")
}

func validateBody(v *common.Validator, body string) {
	v.Check(v.NotBlank(body), "body", "Body must be provided.")
}

func validateBlogFields(title, body string) error {
	v := common.NewValidator()
	validateTitle(v, title)
	validateBody(v, body)
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

func validationMessage(err error) string {
	var ve common.ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return err.Error()
}
