package notes

// optional maps an absent or empty value to nil.
func optional(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
