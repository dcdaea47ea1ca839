package decision

import (
	"fmt"
	"math"

	"github.com/iancoleman/orderedmap"

	"github.com/rath-twin/rath/internal/models"
)

// Impact is one line of a priority score breakdown
type Impact struct {
	Label    string `json:"label"`
	Percent  int    `json:"percent"`
	Positive bool   `json:"positive"`
}

// Sign is "+" for factors that raise priority and "-" for those that lower it
func (i Impact) Sign() string {
	if i.Positive {
		return "+"
	}
	return "-"
}

func (i Impact) String() string {
	return fmt.Sprintf("%s: %s%d%% Impact", i.Label, i.Sign(), i.Percent)
}

// Impacts converts factors into breakdown lines, keeping factor order
func Impacts(fs models.Factors) []Impact {
	out := make([]Impact, 0, len(fs))
	for _, f := range fs {
		out = append(out, Impact{
			Label:    f.Name,
			Percent:  int(math.Round(f.Value * 100)),
			Positive: f.Positive(),
		})
	}
	return out
}

// Breakdown maps each factor label to its "±NN% Impact" text in factor order
func Breakdown(fs models.Factors) *orderedmap.OrderedMap {
	o := orderedmap.New()
	for _, i := range Impacts(fs) {
		o.Set(i.Label, fmt.Sprintf("%s%d%% Impact", i.Sign(), i.Percent))
	}
	return o
}
