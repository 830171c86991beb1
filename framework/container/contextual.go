package container

// ContextualBuilder implements the fluent contextual binding API on top of
// entry overrides.
//
//	// when Greeting needs a HelloPort, give it LoudHello
//	c.When("Greeting").Needs("HelloPort").Give("LoudHello")
//
//	// when Greeting needs its suffix parameter, give it "?!"
//	c.When("Greeting").Needs("$suffix").GiveValue("?!")
type ContextualBuilder struct {
	container *Container
	id        string
	needs     string
}

// Needs names the parameter ("$name") or type identifier to override.
func (b *ContextualBuilder) Needs(key string) *ContextualBuilder {
	b.needs = key
	return b
}

// Give redirects the needed type to another registered identifier.
func (b *ContextualBuilder) Give(id string) error {
	return b.GiveValue(id)
}

// GiveValue supplies a literal for the needed parameter or type. A string
// given for a type is read as an identifier, as with Give; wrap string
// literals in a "$name" parameter override instead.
func (b *ContextualBuilder) GiveValue(value any) error {
	e, ok := b.container.Entry(b.id)
	if !ok {
		return &NotFoundError{ID: b.id}
	}
	e.AddArgument(b.needs, value)
	return nil
}
