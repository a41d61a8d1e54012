package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/schema"
	"github.com/rpupo63/blogroll/errs"
)

const maxFormBytes = 1 << 20

type credentialsForm struct {
	Email    string `schema:"email,required"`
	Password string `schema:"password,required"`
	Next     string `schema:"next"`
}

type addBlogForm struct {
	FeedURL string `schema:"feed_url,required"`
}

type commentForm struct {
	Content string `schema:"content"`
}

type profileForm struct {
	AvatarURL string `schema:"avatar_url"`
	Github    string `schema:"github"`
	Twitter   string `schema:"twitter"`
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// decodeForm binds the request's form into dst. A missing required field is
// reported as a MissingInput error naming the field.
func decodeForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return errs.NewMalformedFormError(err)
	}

	err := formDecoder.Decode(dst, r.PostForm)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if errors.As(err, &multi) {
		var missing []string
		for _, fieldErr := range multi {
			var empty schema.EmptyFieldError
			if errors.As(fieldErr, &empty) {
				missing = append(missing, empty.Key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return errs.NewMissingRequiredFieldError(missing[0])
		}
	}
	return errs.NewMalformedFormError(err)
}
