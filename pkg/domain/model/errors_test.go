package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

func TestResolutionKindOf(t *testing.T) {
	t.Run("tagged error", func(t *testing.T) {
		err := goerr.New("branch not found", goerr.T(model.ErrTagBranchNotFound))
		kind, ok := model.ResolutionKindOf(err)
		gt.True(t, ok)
		gt.Value(t, kind).Equal(model.BranchNotFound)
	})

	t.Run("wrapped tagged error", func(t *testing.T) {
		cause := goerr.New("no such repository", goerr.T(model.ErrTagRepositoryNotFound))
		err := goerr.Wrap(cause, "failed to resolve")
		kind, ok := model.ResolutionKindOf(err)
		gt.True(t, ok)
		gt.Value(t, kind).Equal(model.RepositoryNotFound)
	})

	t.Run("untagged error", func(t *testing.T) {
		_, ok := model.ResolutionKindOf(errors.New("boom"))
		gt.False(t, ok)
	})
}
