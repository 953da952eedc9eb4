package conversion

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// ErrUnsupportedLocale is returned when no number format is known for a locale
var ErrUnsupportedLocale = errors.New("conversion: unsupported locale")

// errNotANumber is the parser error for cells that are not a complete number
var errNotANumber = errors.New("not a number in the configured locale")

// strictNumber matches a complete decimal number after separator normalisation
var strictNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numberFormat holds the separators of a locale
type numberFormat struct {
	decimal string
	// grouping lists every accepted grouping separator
	grouping []string
}

const (
	nbsp       = "\u00a0"
	narrowNbsp = "\u202f"
)

// spaceGrouping is used by locales grouping digits with a (no-break) space
var spaceGrouping = []string{nbsp, narrowNbsp, " "}

// numberFormats is the separator dictionary, keyed by BCP 47 tag.
// The first entry is the fallback for the matcher.
var numberFormats = []struct {
	tag    language.Tag
	format numberFormat
}{
	{language.English, numberFormat{decimal: ".", grouping: []string{","}}},
	{language.German, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.MustParse("de-AT"), numberFormat{decimal: ",", grouping: append([]string{"."}, spaceGrouping...)}},
	{language.MustParse("de-CH"), numberFormat{decimal: ".", grouping: []string{"\u2019", "'"}}},
	{language.French, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.MustParse("fr-CH"), numberFormat{decimal: ".", grouping: append([]string{"\u2019", "'"}, spaceGrouping...)}},
	{language.Italian, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.Spanish, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.Dutch, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.Portuguese, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.BrazilianPortuguese, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.Danish, numberFormat{decimal: ",", grouping: []string{"."}}},
	{language.Swedish, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Norwegian, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Finnish, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Polish, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Czech, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Russian, numberFormat{decimal: ",", grouping: spaceGrouping}},
	{language.Japanese, numberFormat{decimal: ".", grouping: []string{","}}},
	{language.Chinese, numberFormat{decimal: ".", grouping: []string{","}}},
	{language.Korean, numberFormat{decimal: ".", grouping: []string{","}}},
}

// localeMatcher picks the closest entry of numberFormats
var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(numberFormats))
	for i, nf := range numberFormats {
		tags[i] = nf.tag
	}
	return language.NewMatcher(tags)
}()

// lookupNumberFormat returns the separators for locale.
func lookupNumberFormat(locale string) (language.Tag, numberFormat, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, numberFormat{}, fmt.Errorf("%w: %s: %w", ErrUnsupportedLocale, locale, err)
	}

	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return language.Und, numberFormat{}, fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
	}
	return numberFormats[idx].tag, numberFormats[idx].format, nil
}

// LocaleConverter is a ValueConverter that parses int and float cells with
// the separators of a locale, e.g. "1.337,37" in "de-AT". Numeric cells must
// be complete numbers; anything else fails with ErrConversionFailed. Int
// cells with a fractional part are truncated toward zero and must fit into
// 32 bits. All other kinds are handled by the embedded Converter.
type LocaleConverter struct {
	*Converter

	tag    language.Tag
	format numberFormat
}

var _ ValueConverter = (*LocaleConverter)(nil)

// NewLocaleConverter creates a LocaleConverter for a BCP 47 locale such as "de-AT".
func NewLocaleConverter(locale string, opts ...ConverterOption) (*LocaleConverter, error) {
	tag, format, err := lookupNumberFormat(locale)
	if err != nil {
		return nil, err
	}

	return &LocaleConverter{
		Converter: NewConverter(opts...),
		tag:       tag,
		format:    format,
	}, nil
}

// Locale returns the matched locale.
func (c *LocaleConverter) Locale() language.Tag {
	return c.tag
}

// Convert implements ValueConverter.
func (c *LocaleConverter) Convert(value string, target TargetType) (any, error) {
	if IsNullValue(value, target) {
		return nil, nil
	}

	switch target.Kind {
	case KindInt:
		return c.convertInt(value, target)
	case KindFloat:
		return c.convertFloat(value, target)
	default:
		return c.Converter.Convert(value, target)
	}
}

// convertInt parses value as a 32-bit integer, truncating any fraction
func (c *LocaleConverter) convertInt(value string, target TargetType) (any, error) {
	f, err := c.parseNumber(value)
	if err != nil {
		return nil, NewConversionFailed(value, target, err)
	}

	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil, NewConversionFailed(value, target, strconv.ErrRange)
	}
	return int(f), nil
}

// convertFloat parses value as a float64
func (c *LocaleConverter) convertFloat(value string, target TargetType) (any, error) {
	f, err := c.parseNumber(value)
	if err != nil {
		return nil, NewConversionFailed(value, target, err)
	}
	return f, nil
}

// parseNumber normalises the locale separators of value and parses it.
// An empty value is 0.
func (c *LocaleConverter) parseNumber(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, nil
	}

	for _, sep := range c.format.grouping {
		s = strings.ReplaceAll(s, sep, "")
	}
	if c.format.decimal != "." {
		s = strings.Replace(s, c.format.decimal, ".", 1)
	}

	if !strictNumber.MatchString(s) {
		return 0, errNotANumber
	}
	return strconv.ParseFloat(s, 64)
}
