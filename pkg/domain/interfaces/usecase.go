package interfaces

import (
	"context"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// CloneUseCase downloads the directory designated by a GitHub URL
type CloneUseCase interface {
	// Run resolves, lists and downloads. The result is returned even on failure.
	Run(ctx context.Context, input *model.CloneInput) (*model.CloneResult, error)
}
