// Package reviewer builds the infringement prompts and turns the chat
// model's reply into a validated analysis.
package reviewer

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

// SystemMessage frames the chat model as a patent reviewer.
const SystemMessage = "Your professional patent infringement reviewer and understand the patent details."

// ClaimSeparator joins claim texts in the search prompt.  It is a space
// followed by a literal backslash and "n", not a newline.
const ClaimSeparator = ` \n`

// ExampleReport is the one-shot example embedded in the chat prompt.
const ExampleReport = `{"analysis_id":"1","patent_id":"US-RE49889-E1","company_name":"Walmart Inc.","analysis_date":"2024-10-31","top_infringing_products":[{"product_name":"Walmart Shopping App","infringement_likelihood":"High","relevant_claims":["1","2","3","20","21"],"explanation":"The Walmart Shopping App implements several key elements of the patent claims including the direct advertisement-to-list functionality, mobile application integration, and shopping list synchronization. The app's implementation of digital advertisement display and product data handling closely matches the patent's specifications.","specific_features":["Direct advertisement-to-list functionality","Mobile app integration","Shopping list synchronization","Digital weekly ads integration","Product data payload handling"]},{"product_name":"Walmart+","infringement_likelihood":"Moderate","relevant_claims":["1","40","41","42"],"explanation":"The Walmart+ membership program includes shopping list features that partially implement the patent's claims, particularly regarding list synchronization and deep linking capabilities. While not as complete an implementation as the main Shopping App, it still incorporates key patented elements in its list management functionality.","specific_features":["Shopping list synchronization across devices","Deep linking to product lists","Advertisement integration in member benefits","Cloud-based list storage"]}],"overall_risk_assessment":"High risk of infringement due to implementation of core patent claims in multiple products, particularly the Shopping App which implements most key elements of the patent claims. Walmart+ presents additional moderate risk through its partial implementation of the patented technology."}`

const searchTemplate = `Search for a company's products has infringed on the given patent.
Give me top two infringing products which may makes, uses, sells, or offers to sell a patented invention
And here is the patent details:
Patent Title: {{.Title}}
Patent Assignee: {{.Assignee}}
Patent Abstract: {{.Abstract}}
Patent Description: {{.Description}}
Patent Claims: {{.Claims}}`

const fence = "```"

var chatTemplate = `
Use the following question to answer the question with related products:
Question: {{.Question}}
Related products: {{.Products}}
Give me the the result same as example in JSON format.
Example:
` + fence + `json
{{.Example}}
` + fence + `
`

var (
	searchTmpl = template.Must(template.New("search").Parse(searchTemplate))
	chatTmpl   = template.Must(template.New("chat").Parse(chatTemplate))
)

// SearchPrompt renders the text that is both embedded for product retrieval
// and quoted as the question in the chat prompt.
func SearchPrompt(p *patent.Patent) (string, error) {
	data := struct {
		Title, Assignee, Abstract, Description, Claims string
	}{
		Title:       p.Title,
		Assignee:    p.Assignee,
		Abstract:    p.Abstract,
		Description: p.Description,
		Claims:      strings.Join(p.ClaimTexts(), ClaimSeparator),
	}
	return render(searchTmpl, data)
}

// ChatPrompt renders the user message: the question, the related products as
// a JSON array and the one-shot example.
func ChatPrompt(question string, products []*product.Product) (string, error) {
	if products == nil {
		products = []*product.Product{}
	}
	encoded, err := json.Marshal(products)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode related products")
	}
	data := struct {
		Question, Products, Example string
	}{
		Question: question,
		Products: string(encoded),
		Example:  ExampleReport,
	}
	return render(chatTmpl, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to render prompt "+t.Name())
	}
	return buf.String(), nil
}
