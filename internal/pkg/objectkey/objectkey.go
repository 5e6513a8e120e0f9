// Package objectkey generates collision-resistant, date-partitioned storage
// keys of the form {category}/{yyyy}/{mm}/{dd}/{uuid}{ext}.
package objectkey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: func() time.Time { return time.Now().UTC() }}
}

func (g *Generator) NewKey(category, ext string) string {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s/%s%s", category, g.now().Format("2006/01/02"), uuid.New(), ext)
}
