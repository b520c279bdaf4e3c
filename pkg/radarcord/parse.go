package radarcord

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// parseStatsBody extracts {message} from a stats response. Bodies that are not
// JSON objects yield an empty message rather than an error.
func parseStatsBody(body []byte) StatsPostBody {
	if !gjson.ValidBytes(body) {
		return StatsPostBody{}
	}
	return StatsPostBody{Message: gjson.GetBytes(body, "message").String()}
}

// parseReviews coerces every element of the "reviews" array field by field.
// A missing or null array means the bot has no reviews.
func parseReviews(body []byte) ([]Review, error) {
	if !gjson.ValidBytes(body) {
		return nil, newError(nil, "Invalid reviews response: %s", truncate(string(body), 200))
	}

	list := gjson.GetBytes(body, "reviews")
	if !list.Exists() || list.Type == gjson.Null {
		return []Review{}, nil
	}
	if !list.IsArray() {
		return nil, newError(nil, "Invalid reviews response: reviews is not an array")
	}

	items := list.Array()
	reviews := make([]Review, 0, len(items))
	for i, item := range items {
		stars, err := coerceInt(item.Get("stars"))
		if err != nil {
			return nil, newError(err, "Invalid stars value in review %d: %v", i, err)
		}
		reviews = append(reviews, Review{
			Content: coerceString(item.Get("content")),
			Stars:   stars,
			BotID:   coerceString(item.Get("botid")),
			UserID:  coerceString(item.Get("userid")),
		})
	}
	return reviews, nil
}

// coerceString renders any JSON scalar as text. Integers keep their raw
// digits so snowflakes never lose precision.
func coerceString(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	case gjson.Null:
		return ""
	default:
		return r.String()
	}
}

// coerceInt accepts a JSON number or a numeric string. Fractions are
// truncated toward zero.
func coerceInt(r gjson.Result) (int, error) {
	switch r.Type {
	case gjson.Number:
		if n, err := strconv.Atoi(r.Raw); err == nil {
			return n, nil
		}
		return floatToInt(r.Num, r.Raw)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not a number: %q", r.Str)
		}
		return floatToInt(f, r.Str)
	default:
		if !r.Exists() {
			return 0, fmt.Errorf("missing")
		}
		return 0, fmt.Errorf("not a number: %s", r.Raw)
	}
}

// floatToInt truncates f toward zero and rejects values outside the int range
func floatToInt(f float64, raw string) (int, error) {
	t := math.Trunc(f)
	if math.IsNaN(t) || t >= -float64(math.MinInt) || t < float64(math.MinInt) {
		return 0, fmt.Errorf("out of range: %s", raw)
	}
	return int(t), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
