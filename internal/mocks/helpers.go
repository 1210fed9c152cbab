package mocks

import (
	"fmt"
	"sort"

	"github.com/xkilldash9x/seleniumshift/internal/store"
)

func errNotFound(name string) error {
	return fmt.Errorf("%w: %s", store.ErrNotFound, name)
}

func sortStrings(s []string) { sort.Strings(s) }
