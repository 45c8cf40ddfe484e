package model

//go:generate go tool stringer -type=ContainerKind -linecomment -output=containerkind_string.go

// ContainerKind is the keyword of one link in an enclosing-container chain.
type ContainerKind int

const (
	ContainerPackage ContainerKind = iota // package
	ContainerFile                         // file
	ContainerFunc                         // func
)

// Parent models one link of the chain of containers enclosing a target.
//
// Chains run outermost-first: the package link is the root, its Child is the
// declaring file (whose Constraints hold the file's build constraint
// expression), and a func link below the file marks a type declared inside a
// function body, which cannot host methods.
type Parent struct {
	Kind        ContainerKind
	Name        string
	Constraints string
	Child       *Parent
}

// Chain links the given containers outermost-first and returns the root.
func Chain(links ...Parent) *Parent {
	var root *Parent
	for i := len(links) - 1; i >= 0; i-- {
		link := links[i]
		link.Child = root
		root = &link
	}

	return root
}

// Links returns the chain as a slice, outermost first.
func (p *Parent) Links() []Parent {
	var links []Parent
	for cur := p; cur != nil; cur = cur.Child {
		link := *cur
		link.Child = nil
		links = append(links, link)
	}

	return links
}

// Find returns the outermost link of the given kind, or nil.
func (p *Parent) Find(kind ContainerKind) *Parent {
	for cur := p; cur != nil; cur = cur.Child {
		if cur.Kind == kind {
			return cur
		}
	}

	return nil
}

// Innermost returns the last link of the chain.
func (p *Parent) Innermost() *Parent {
	cur := p
	for cur != nil && cur.Child != nil {
		cur = cur.Child
	}

	return cur
}

// CanHostMethods reports whether a type declared at the end of this chain may
// receive generated methods: it must sit directly in a file.
func (p *Parent) CanHostMethods() bool {
	inner := p.Innermost()
	return inner != nil && inner.Kind == ContainerFile && p.Find(ContainerPackage) != nil
}
