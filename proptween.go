package cadence

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RecordKind tags how a PropTween computes and applies its value.
type RecordKind uint8

const (
	// RecordNumeric interpolates a number (or a bool) linearly.
	RecordNumeric RecordKind = iota
	// RecordComplex interpolates the numbers embedded in a string.
	RecordComplex
	// RecordPlugin delegates rendering to a registered Plugin.
	RecordPlugin
)

func (k RecordKind) String() string {
	switch k {
	case RecordNumeric:
		return "numeric"
	case RecordComplex:
		return "complex"
	case RecordPlugin:
		return "plugin"
	}
	return "unknown"
}

// PropTween is one node of a tween's property list: it knows how to compute
// and assign an intermediate value of one property of one target for a given
// ratio. Records are created when the tween initializes and are owned by it.
type PropTween struct {
	Kind     RecordKind
	Target   any
	Property string

	// Start and Change describe numeric records: value = Start + Change*ratio.
	Start  float64
	Change float64

	// Round rounds numeric results to integers before assignment.
	Round bool
	// Modifier post-processes numeric results before assignment.
	Modifier func(float64) float64

	end    float64
	hasEnd bool
	isBool bool

	// complex strings
	begin  string
	final  string
	parts  *complexPart
	suffix string

	plugin Plugin
	state  any

	set   func(v any)
	index int
	next  *PropTween
}

type complexPart struct {
	prefix string
	start  float64
	change float64
	round  bool
	next   *complexPart
}

// Next returns the following record in the list.
func (pt *PropTween) Next() *PropTween { return pt.next }

// State returns the value a plugin returned from Init for this record.
func (pt *PropTween) State() any { return pt.state }

// Plugin returns the plugin rendering this record, if any.
func (pt *PropTween) Plugin() Plugin { return pt.plugin }

// Set assigns v to the record's target property. Plugins use it from Render.
func (pt *PropTween) Set(v any) {
	if pt.set != nil {
		pt.set(v)
	}
}

// Value computes the numeric value for ratio without assigning it.
func (pt *PropTween) Value(ratio float64) float64 {
	if ratio == 1 && pt.hasEnd {
		return pt.end
	}
	return math.Round((pt.Start+pt.Change*ratio)*1e6) / 1e6
}

// render applies the record for ratio. Calling it twice with the same ratio
// assigns the same value; non-finite results are skipped.
func (pt *PropTween) render(ratio float64) {
	switch pt.Kind {
	case RecordNumeric:
		pt.renderNumeric(ratio)
	case RecordComplex:
		pt.renderComplex(ratio)
	case RecordPlugin:
		if pt.plugin != nil {
			pt.plugin.Render(ratio, pt)
		}
	}
}

func (pt *PropTween) renderNumeric(ratio float64) {
	if pt.isBool {
		v := pt.Start + pt.Change*ratio
		if !finite(v) {
			return
		}
		pt.set(v != 0)
		return
	}
	v := pt.Value(ratio)
	if pt.Modifier != nil {
		v = pt.Modifier(v)
	}
	if pt.Round {
		v = math.Round(v)
	}
	if !finite(v) {
		return
	}
	pt.set(v)
}

func (pt *PropTween) renderComplex(ratio float64) {
	if ratio == 0 && pt.begin != "" {
		pt.set(pt.begin)
		return
	}
	if ratio == 1 && pt.final != "" {
		pt.set(pt.final)
		return
	}
	var b strings.Builder
	for p := pt.parts; p != nil; p = p.next {
		v := p.start + p.change*ratio
		if !finite(v) {
			return
		}
		if p.round {
			v = math.Round(v)
		} else {
			v = math.Round(v*1e4) / 1e4
		}
		b.WriteString(p.prefix)
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteString(pt.suffix)
	pt.set(b.String())
}

var (
	complexNumExp = regexp.MustCompile(`[-+=.]*\d+[.e\-+]*\d*[e\-+]*\d*`)
	leadingNumExp = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
)

// parseLeadingFloat reads the number at the start of s, ignoring any unit
// that follows it ("10px" is 10).
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumExp.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	return f, err == nil
}

// isRelative reports whether s uses the "+=", "-=", "*=" or "/=" syntax.
func isRelative(s string) bool {
	return len(s) > 2 && s[1] == '=' && strings.ContainsRune("+-*/", rune(s[0]))
}

// parseRelative applies a relative token to start.
func parseRelative(start float64, value string) float64 {
	amount, _ := parseLeadingFloat(value[2:])
	switch value[0] {
	case '+':
		return start + amount
	case '-':
		return start - amount
	case '*':
		return start * amount
	default:
		return start / amount
	}
}

// newComplexRecord builds a complex-string record. Numbers in end are paired
// with the number at the same position in start; unchanged numbers stay part
// of the literal text. Runs inside rgba( and rgb( round their first three
// components.
func newComplexRecord(start, end string) *PropTween {
	pt := &PropTween{Kind: RecordComplex, begin: start, final: end}
	startNums := complexNumExp.FindAllString(start, -1)
	var last *complexPart
	index, matchIndex, color := 0, 0, 0
	relative := false
	for _, m := range complexNumExp.FindAllStringIndex(end, -1) {
		endNum := end[m[0]:m[1]]
		chunk := end[index:m[0]]
		if color > 0 {
			color = (color + 1) % 5
		} else if strings.HasSuffix(chunk, "rgba(") || strings.HasSuffix(chunk, "rgb(") {
			color = 1
		}
		matchIndex++
		startStr := ""
		if matchIndex <= len(startNums) {
			startStr = startNums[matchIndex-1]
		}
		if endNum == startStr {
			continue
		}
		startNum, _ := parseLeadingFloat(startStr)
		prefix := chunk
		if chunk == "" && matchIndex != 1 {
			prefix = ","
		}
		var change float64
		if isRelative(endNum) {
			change = parseRelative(startNum, endNum) - startNum
			relative = true
		} else {
			endVal, _ := parseLeadingFloat(endNum)
			change = endVal - startNum
		}
		part := &complexPart{prefix: prefix, start: startNum, change: change, round: color > 0 && color < 4}
		if last == nil {
			pt.parts = part
		} else {
			last.next = part
		}
		last = part
		index = m[1]
	}
	pt.suffix = end[index:]
	if relative {
		pt.final = ""
	}
	return pt
}

// newNumericRecord builds a linear record from start to end. The literal end
// is stored so ratio 1 assigns it exactly.
func newNumericRecord(start, end float64) *PropTween {
	return &PropTween{
		Kind:   RecordNumeric,
		Start:  start,
		Change: end - start,
		end:    end,
		hasEnd: true,
	}
}

// newRecord decides the record kind for a start value and an end value.
// Relative ends are resolved against start here, not at render time.
func newRecord(start, end any) *PropTween {
	if s, ok := end.(string); ok && isRelative(s) {
		if sf, ok := toFloat(start); ok {
			end = parseRelative(sf, s)
		}
	}
	if sb, ok := start.(bool); ok {
		eb, ok := toBool(end)
		if ok {
			pt := &PropTween{Kind: RecordNumeric, isBool: true}
			if sb {
				pt.Start = 1
			}
			if eb {
				pt.Change = 1 - pt.Start
			} else {
				pt.Change = -pt.Start
			}
			return pt
		}
	}
	if _, isBool := end.(bool); !isBool {
		sf, sok := toFloat(start)
		ef, eok := toFloat(end)
		if sok && eok {
			return newNumericRecord(sf, ef)
		}
	}
	return newComplexRecord(formatValue(start), formatValue(end))
}
