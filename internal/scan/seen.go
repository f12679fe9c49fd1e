package scan

// SeenSet tracks canonical posting links for the lifetime of one run.
// Append-only; membership is checked before any click on a tile so no link
// is ever processed twice, whatever else goes wrong.
type SeenSet struct {
	links map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{links: make(map[string]struct{})}
}

func (s *SeenSet) Has(link string) bool {
	_, ok := s.links[link]
	return ok
}

func (s *SeenSet) Add(link string) {
	if link == "" {
		return
	}
	s.links[link] = struct{}{}
}

func (s *SeenSet) Len() int { return len(s.links) }
