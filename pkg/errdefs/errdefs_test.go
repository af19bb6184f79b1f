package errdefs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrValidation, http.StatusBadRequest},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrGone, http.StatusGone},
		{ErrTooLarge, http.StatusRequestEntityTooLarge},
		{ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrappedErrorsKeepCategory(t *testing.T) {
	err := fmt.Errorf("lookup folder: %w", NotFoundf("folder %s", "abc"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped error lost ErrNotFound category")
	}

	if got := Status(err); got != http.StatusNotFound {
		t.Fatalf("Status = %d, want 404", got)
	}
}

func TestInternalfKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internalf(cause, "save metadata")

	if !errors.Is(err, ErrInternal) {
		t.Fatal("Internalf lost ErrInternal category")
	}

	if !errors.Is(err, cause) {
		t.Fatal("Internalf lost original cause")
	}
}
