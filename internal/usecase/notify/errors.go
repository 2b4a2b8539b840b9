package notify

import "errnotice/internal/domain/entity"

// ErrNilError is returned by Builder.Build when no error value is given.
var ErrNilError = entity.ErrNilError
