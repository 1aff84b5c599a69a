package model

type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" validate:"required,max=255"`
	ShortName  string `json:"short_name" validate:"required,max=64"`
	Language   string `json:"language" validate:"required,max=64"`
	Concepts   string `json:"concepts" validate:"required"`
	IsArchived bool   `json:"is_archived"`
}

type CoursePatch struct {
	Name       *string `json:"name"`
	ShortName  *string `json:"short_name"`
	Language   *string `json:"language"`
	Concepts   *string `json:"concepts"`
	IsArchived *bool   `json:"is_archived"`
}

func (p CoursePatch) Apply(c *Course) {
	setString(&c.Name, p.Name)
	setString(&c.ShortName, p.ShortName)
	setString(&c.Language, p.Language)
	setString(&c.Concepts, p.Concepts)
	if p.IsArchived != nil {
		c.IsArchived = *p.IsArchived
	}
}
