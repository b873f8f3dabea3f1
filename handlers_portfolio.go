package folio

import (
	"fmt"
	"slices"
)

func (s *state) addPortfolio(a Args) error {
	name := a.Str("PfName")
	if s.portfolio(name) >= 0 {
		return fmt.Errorf("%w: portfolio %q", ErrDuplicate, name)
	}
	s.portfolios = append(s.portfolios, Portfolio{Name: name})
	return nil
}

func (s *state) editPortfolio(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	name := a.Str("NewName")
	if name != p.Name && s.portfolio(name) >= 0 {
		return fmt.Errorf("%w: portfolio %q", ErrDuplicate, name)
	}
	p.Name = name
	return nil
}

func (s *state) deletePortfolio(a Args) error {
	name := a.Str("PfName")
	i := s.portfolio(name)
	if i < 0 {
		return fmt.Errorf("%w: portfolio %q", ErrNotFound, name)
	}
	if !s.portfolios[i].IsEmpty() {
		return fmt.Errorf("%w: portfolio %q still owns holdings, trades or orders", ErrRefused, name)
	}
	s.portfolios = slices.Delete(s.portfolios, i, i+1)
	return nil
}

func (s *state) topPortfolio(a Args) error {
	name := a.Str("PfName")
	i := s.portfolio(name)
	if i < 0 {
		return fmt.Errorf("%w: portfolio %q", ErrNotFound, name)
	}
	p := s.portfolios[i]
	copy(s.portfolios[1:i+1], s.portfolios[:i])
	s.portfolios[0] = p
	return nil
}

func (s *state) followPortfolio(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	sref := a.SRef("SRef")
	if _, err := s.openStock(sref); err != nil {
		return err
	}
	if p.Follows(sref) {
		return fmt.Errorf("%w: %q already follows %s", ErrDuplicate, p.Name, sref)
	}
	p.SRefs = append(p.SRefs, sref)
	return nil
}

func (s *state) unfollowPortfolio(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	sref := a.SRef("SRef")
	i := slices.Index(p.SRefs, sref)
	if i < 0 {
		return fmt.Errorf("%w: %q does not follow %s", ErrNotFound, p.Name, sref)
	}
	if slices.ContainsFunc(p.Holdings, func(h Holding) bool { return h.SRef == sref }) ||
		slices.ContainsFunc(p.Orders, func(o Order) bool { return o.SRef == sref }) {
		return fmt.Errorf("%w: %q still holds or orders %s", ErrRefused, p.Name, sref)
	}
	p.SRefs = slices.Delete(p.SRefs, i, i+1)
	return nil
}
