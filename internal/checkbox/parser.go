package checkbox

import "github.com/sandeepkv93/dailycheck/internal/status"

type Parser struct {
	registry   *status.Registry
	serializer *Serializer
}

func NewParser(registry *status.Registry, serializer *Serializer) *Parser {
	return &Parser{registry: registry, serializer: serializer}
}

// Parse reads a checkbox line. Symbols missing from the registry resolve to
// an Unknown status so they are written back unchanged.
func (p *Parser) Parse(line string) (Checkbox, bool) {
	cb, _, ok := p.Inspect(line)
	return cb, ok
}

// Inspect is Parse plus the diagnostics for fields that were dropped.
func (p *Parser) Inspect(line string) (Checkbox, []Diagnostic, bool) {
	c, ok := ParseLine(line)
	if !ok {
		return Checkbox{}, nil, false
	}

	d := p.serializer.Deserialize(c.Body)
	return Checkbox{
		Indentation:      c.Indentation,
		ListMarker:       c.ListMarker,
		Status:           p.registry.BySymbolOrCreate(c.Symbol),
		Description:      d.Description,
		DoneDate:         d.DoneDate,
		RecurrenceRule:   d.RecurrenceRule,
		RecurrenceDate:   d.RecurrenceDate,
		Tags:             d.Tags,
		BlockLink:        c.BlockLink,
		OriginalMarkdown: line,
	}, d.Diagnostics, true
}

// Format renders cb as a full markdown line.
func (p *Parser) Format(cb Checkbox) string {
	return cb.Indentation + cb.ListMarker + " [" + cb.Status.Symbol + "] " + p.serializer.Serialize(cb)
}

func (p *Parser) Registry() *status.Registry {
	return p.registry
}
