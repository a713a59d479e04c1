package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axdbertuol/carford/apperror"
)

type userIn struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=50,password"`
}

type carIn struct {
	OwnerID int64  `json:"owner_id" validate:"required,gt=0"`
	Color   string `json:"color" validate:"required,oneof=yellow blue gray"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.ValidationError, appErr.Type)
	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestPasswordRule(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"pasSword123@", true},
		{"Abcdefg1~", true},
		{"Abcdefg1¿", true},
		{"password123@", false},
		{"PASSWORD123@", false},
		{"Password@@@@", false},
		{"Password1234", false},
		{"Pa1@", false},
		{"Pa1@" + strings.Repeat("x", 47), false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := Struct(&userIn{Username: "alice", Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldsOf(t, err), "password")
		})
	}
}

func TestPasswordRule_ByteLimit(t *testing.T) {
	// 40 runes but more than 72 bytes.
	pw := "Aa1@" + strings.Repeat("é", 36)
	fields := fieldsOf(t, Struct(&userIn{Username: "alice", Password: pw}))
	assert.Contains(t, fields["password"], "8 to 50 characters")
	assert.Contains(t, fields["password"], "at most 72 bytes")
}

func TestStruct_ReportsAllFields(t *testing.T) {
	fields := fieldsOf(t, Struct(&userIn{Username: "al", Password: "weak"}))

	assert.Len(t, fields, 2)
	assert.Equal(t, "must be at least 3 characters long", fields["username"])
	assert.Contains(t, fields, "password")
}

func TestStruct_OneOf(t *testing.T) {
	fields := fieldsOf(t, Struct(&carIn{OwnerID: 1, Color: "red"}))

	assert.Equal(t, "must be one of: yellow, blue, gray", fields["color"])
}

func TestDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"owner_id": 7, "color": "blue"}`))
		var in carIn
		require.NoError(t, Decode(httptest.NewRecorder(), r, &in))
		assert.Equal(t, int64(7), in.OwnerID)
	})

	t.Run("wrong type is a field error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"owner_id": "seven", "color": "blue"}`))
		var in carIn
		fields := fieldsOf(t, Decode(httptest.NewRecorder(), r, &in))
		assert.Equal(t, "must be of type integer", fields["owner_id"])
		assert.Len(t, fields, 1)
	})

	t.Run("wrong type is reported with the other field errors", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"owner_id": "abc", "color": "red"}`))
		var in carIn
		err := Decode(httptest.NewRecorder(), r, &in)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		require.Len(t, appErr.Fields, 2)
		assert.Equal(t, apperror.FieldError{Field: "owner_id", Message: "must be of type integer"}, appErr.Fields[0])
		assert.Equal(t, "color", appErr.Fields[1].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"owner_id": `))
		var in carIn
		err := Decode(httptest.NewRecorder(), r, &in)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.BadRequestError, appErr.Type)
		assert.Equal(t, "Invalid request body", appErr.Message)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		var in carIn
		err := Decode(httptest.NewRecorder(), r, &in)
		assert.True(t, apperror.FromError(err).StatusCode() == http.StatusBadRequest)
	})
}
