package model

// College is the root of the organisational hierarchy.
type College struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required,max=255"`
	ShortName string `json:"short_name" validate:"required,max=64"`
}

// CollegePatch carries the attributes explicitly set by a partial update.
type CollegePatch struct {
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
}

// Apply merges the set attributes into c.
func (p CollegePatch) Apply(c *College) {
	setString(&c.Name, p.Name)
	setString(&c.ShortName, p.ShortName)
}
