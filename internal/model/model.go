// Package model contains the table-backed entity types and their partial-update
// counterparts. A patch field left nil is not applied.
package model

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

// setOptional replaces a nullable column value. A set pointer to an
// empty string stays an empty string; it does not clear the column.
func setOptional(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}
