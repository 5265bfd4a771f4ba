package rest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
	usagesvc "github.com/davidleathers/cnp-fraud-console/internal/service/usage"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageFraud = "fraud"
	pageUsage = "usage"
)

var templateFuncs = template.FuncMap{
	"prob": func(p float64) string { return strconv.FormatFloat(p, 'f', 4, 64) },
	"num":  func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

// pageRenderer renders the HTML screens from the embedded templates
type pageRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func newPageRenderer(logger *slog.Logger) (*pageRenderer, error) {
	pr := &pageRenderer{pages: make(map[string]*template.Template), logger: logger}
	for _, name := range []string{pageFraud, pageUsage} {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/chart.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s templates: %w", name, err)
		}
		pr.pages[name] = t
	}
	return pr, nil
}

// render executes into a buffer first so a template failure never leaves a
// half-written page.
func (p *pageRenderer) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	t, ok := p.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		p.logger.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, "An internal error occurred", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fraudPage is the view model of the scoring screen
type fraudPage struct {
	Title       string
	Active      string
	Mode        string
	Provinces   []string
	CardTypes   []transaction.CardType
	Types       []transaction.Type
	Form        manualForm
	Error       string
	FieldErrors map[string][]string
	Batch       *batchView
	Manual      *manualView
}

// manualForm keeps the submitted values so the form can be re-filled
type manualForm struct {
	CardNumber          string
	CardIPProvince      string
	TransactionProvince string
	TransactionTime     string
	DeviceID            string
	CardType            string
	TransactionType     string
	Amount              string
	OldBalanceOrig      string
	NewBalanceOrig      string
	OldBalanceDest      string
	NewBalanceDest      string
}

type batchView struct {
	FileName     string
	ModelVersion string
	Columns      []string
	Rows         []predictionRow
	Flagged      int
	ExplainedRow int
	Chart        *barChart
}

type predictionRow struct {
	// Line is the 1-based data row of the upload
	Line        int
	Values      []float64
	Label       int
	Probability float64
	Severity    fraud.FraudSeverity
}

type manualView struct {
	ModelVersion string
	Probability  float64
	Severity     fraud.FraudSeverity
	Features     features.Row
	Chart        *barChart
}

func newFraudPage(mode string) *fraudPage {
	return &fraudPage{
		Title:     "CNP Fraud Detection",
		Active:    pageFraud,
		Mode:      mode,
		Provinces: transaction.Provinces,
		CardTypes: transaction.CardTypes(),
		Types:     transaction.Types(),
		Form: manualForm{
			CardNumber:          transaction.DefaultManualCard,
			DeviceID:            transaction.DefaultManualDevice,
			CardIPProvince:      transaction.Provinces[0],
			TransactionProvince: transaction.Provinces[0],
			CardType:            string(transaction.CardTypeVISA),
			TransactionType:     string(transaction.TypeTransfer),
		},
	}
}

func newBatchView(fileName string, res *fraud.BatchResult) *batchView {
	view := &batchView{
		FileName:     fileName,
		ModelVersion: res.ModelVersion,
		Columns:      res.Columns,
		Rows:         make([]predictionRow, 0, len(res.Predictions)),
		Chart:        newBarChart(res.Explanation),
	}
	for _, p := range res.Predictions {
		if p.Probability >= fraud.RiskScoreMedium {
			view.Flagged++
		}
		view.Rows = append(view.Rows, predictionRow{
			Line:        p.SourceIndex() + 1,
			Values:      p.Features.Vector(),
			Label:       p.Features.Label,
			Probability: p.Probability,
			Severity:    p.Severity,
		})
	}
	if res.Explanation != nil {
		view.ExplainedRow = res.Explanation.SourceIndex + 1
	}
	return view
}

func newManualView(res *fraud.ManualResult) *manualView {
	return &manualView{
		ModelVersion: res.ModelVersion,
		Probability:  res.Prediction.Probability,
		Severity:     res.Prediction.Severity,
		Features:     res.Prediction.Features,
		Chart:        newBarChart(res.Explanation),
	}
}

// usagePage is the view model of the usage dashboard
type usagePage struct {
	Title    string
	Active   string
	Notice   string
	Error    string
	Selected string
	Report   *usagesvc.Report
}

func newUsagePage() *usagePage {
	return &usagePage{
		Title:  "Client Usage Dashboard",
		Active: pageUsage,
	}
}
