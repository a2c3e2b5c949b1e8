package plugin

import "errors"

var ErrFrozen = errors.New("plugin: registry is frozen, plugins must be registered before serving")
