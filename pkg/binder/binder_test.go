package binder

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})
}

type viewParams struct {
	Sort *string `query:"sort" json:"sort,omitempty" validate:"omitempty,sortkey"`
	Mode *string `query:"mode" json:"mode,omitempty" validate:"omitempty,viewmode"`
	Page int     `query:"page" json:"page" default:"1" validate:"min=1"`
}

func TestBind_Query(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("decodes query params and applies defaults", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/?sort=author&mode=recommendations"))
		require.NoError(tt, err)
		require.NotNil(tt, p.Sort)
		assert.Equal(tt, "author", *p.Sort)
		require.NotNil(tt, p.Mode)
		assert.Equal(tt, "recommendations", *p.Mode)
		assert.Equal(tt, 1, p.Page)
	})

	t.Run("leaves missing pointers nil", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/"))
		require.NoError(tt, err)
		assert.Nil(tt, p.Sort)
		assert.Nil(tt, p.Mode)
	})

	t.Run("rejects unknown sort keys", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/?sort=random"))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"sort" must be one of the following`)
	})

	t.Run("rejects unknown view modes", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/?mode=all"))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"mode" must be one of the following: "owned", "recommendations"`)
	})

	t.Run("reports type errors", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/?page=two"))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `"page" should be of type int`)
	})

	t.Run("rejects unknown params", func(tt *testing.T) {
		p := viewParams{}
		err := b.Bind(&p, newQueryContext("/?colour=red"))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), `Unknown Parameter "colour"`)
	})
}

func newQueryContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.GET, target, nil)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
