package fastclass

import (
	"fmt"

	"github.com/anoideaopen/fastreflect/core/reflectx"
)

// Error kinds, see reflectx.
var (
	ErrConfiguration = reflectx.ErrConfiguration
	ErrInvocation    = reflectx.ErrInvocation
)

var (
	ErrNoDefaultConstructor = fmt.Errorf("%w: no parameterless constructor defined", ErrConfiguration)
	ErrNoGetter             = fmt.Errorf("%w: property has no public getter", ErrConfiguration)
	ErrNoSetter             = fmt.Errorf("%w: property has no public setter", ErrConfiguration)
	ErrForeignMember        = fmt.Errorf("%w: member is declared on another type", ErrConfiguration)
)
