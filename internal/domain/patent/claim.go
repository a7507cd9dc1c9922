package patent

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// Claim is one numbered claim.  Order within Patent.Claims is the claim
// order of the publication.
type Claim struct {
	Num  string `json:"num"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts "num" as either a JSON string or a JSON number.
func (c *Claim) UnmarshalJSON(data []byte) error {
	var raw struct {
		Num  json.RawMessage `json:"num"`
		Text string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Text = raw.Text
	c.Num = ""

	num := bytes.TrimSpace(raw.Num)
	if len(num) == 0 || bytes.Equal(num, []byte("null")) {
		return nil
	}
	if num[0] == '"' {
		return json.Unmarshal(num, &c.Num)
	}
	var n json.Number
	if err := json.Unmarshal(num, &n); err != nil {
		return errors.Wrap(err, errors.ErrCodePatentParseFailed, "claim num must be a string or number")
	}
	c.Num = n.String()
	return nil
}

// Validate rejects claims with no text.
func (c Claim) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return errors.Newf(errors.ErrCodeValidation, "claim %s has no text", c.Num)
	}
	return nil
}
