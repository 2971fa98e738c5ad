package handler

import "github.com/deppfellow/profile-api/internal/validation"

const (
	// usernamePattern accepts e-mail shaped usernames.
	usernamePattern = `\w+@[a-zA-Z_]+?\.[a-zA-Z]{2,3}`
	// passwordPattern is a letter, 2 to 6 digits, then a letter.
	passwordPattern = `[A-z]\d{2,6}[A-z]`
)

var (
	LoginSchema = validation.Schema{
		Body: []validation.Rule{
			validation.Field("username", validation.KindString).Required(),
			validation.Field("password", validation.KindString).Required(),
		},
	}

	RegisterSchema = validation.Schema{
		Body: []validation.Rule{
			validation.Field("username", validation.KindString).Required().Match(usernamePattern),
			validation.Field("password", validation.KindString).Required().Match(passwordPattern),
			validation.Field("name", validation.KindString).Nullable().Tag("max=64"),
		},
	}

	ListUsersSchema = validation.Schema{
		Query: []validation.Rule{
			validation.Field("page", validation.KindInteger).Default(1).Tag("min=1"),
			validation.Field("limit", validation.KindInteger).Default(10).Tag("min=1,max=100"),
		},
	}

	GetUserSchema = validation.Schema{
		Params: []validation.Rule{
			validation.Field("username", validation.KindString).Required(),
		},
	}

	UpdateMeSchema = validation.Schema{
		Body: []validation.Rule{
			validation.Field("name", validation.KindString).Nullable().Tag("max=64"),
		},
	}

	UploadPictureSchema = validation.Schema{
		Body: []validation.Rule{
			validation.Field("image", validation.KindString).Required().Tag("base64"),
		},
	}

	DeleteImageSchema = validation.Schema{
		Params: []validation.Rule{
			validation.Field("id", validation.KindString).Required().Tag("alphanum"),
		},
	}
)
