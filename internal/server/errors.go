package server

import (
	"errors"

	"rupeeflow/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
