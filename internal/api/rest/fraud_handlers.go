package rest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/csvio"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
)

const (
	modeUpload = "upload"
	modeManual = "manual"

	// uploadField is the multipart field carrying the CSV file
	uploadField = "file"
	// multipartMemory is held in memory before spilling to temp files
	multipartMemory = 8 << 20
)

// errNoUpload is returned when a multipart request has no file part
var errNoUpload = &ValidationError{
	Message: "Validation failed",
	Fields:  map[string][]string{uploadField: {"A CSV file is required"}},
}

// FraudPage handles GET /fraud
func (h *Handler) FraudPage(w http.ResponseWriter, r *http.Request) {
	mode := modeUpload
	if r.URL.Query().Get("mode") == modeManual {
		mode = modeManual
	}
	h.pages.render(w, r, http.StatusOK, pageFraud, newFraudPage(mode))
}

// UploadPage handles POST /fraud/upload
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	page := newFraudPage(modeUpload)

	body, name, err := h.readUpload(w, r)
	if err == nil {
		defer body.Close()
		var txns []transaction.Transaction
		if txns, err = csvio.ReadTransactions(body); err == nil {
			res, scoreErr := h.services.Fraud.ScoreBatch(r.Context(), metrics.SourceUpload, txns)
			if scoreErr == nil {
				page.Batch = newBatchView(name, res)
				h.pages.render(w, r, http.StatusOK, pageFraud, page)
				return
			}
			err = scoreErr
		}
	}

	status := h.describeError(r, page, err)
	h.pages.render(w, r, status, pageFraud, page)
}

// ManualPage handles POST /fraud/manual
func (h *Handler) ManualPage(w http.ResponseWriter, r *http.Request) {
	page := newFraudPage(modeManual)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseForm(); err != nil {
		status := h.describeError(r, page, err)
		h.pages.render(w, r, status, pageFraud, page)
		return
	}
	page.Form = formValues(r)

	req, err := manualEntryFromForm(r.PostForm)
	if err == nil {
		err = h.Validate(req)
	}
	if err == nil {
		var tx transaction.Transaction
		if tx, err = req.Transaction(h.now()); err == nil {
			res, scoreErr := h.services.Fraud.ScoreManual(r.Context(), metrics.SourceManual, tx)
			if scoreErr == nil {
				page.Manual = newManualView(res)
				h.pages.render(w, r, http.StatusOK, pageFraud, page)
				return
			}
			err = scoreErr
		}
	}

	status := h.describeError(r, page, err)
	h.pages.render(w, r, status, pageFraud, page)
}

// ScoreBatchAPI handles POST /api/v1/fraud/score
func (h *Handler) ScoreBatchAPI(w http.ResponseWriter, r *http.Request) {
	body, _, err := h.readUpload(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer body.Close()

	txns, err := csvio.ReadTransactions(body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	res, err := h.services.Fraud.ScoreBatch(r.Context(), metrics.SourceAPI, txns)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeSuccess(w, r, http.StatusOK, newScoreBatchResponse(res))
}

// ScoreManualAPI handles POST /api/v1/fraud/manual
func (h *Handler) ScoreManualAPI(w http.ResponseWriter, r *http.Request) {
	var req ManualEntryRequest
	if err := h.decodeJSON(w, r, h.maxUploadBytes, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	tx, err := req.Transaction(h.now())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	res, err := h.services.Fraud.ScoreManual(r.Context(), metrics.SourceAPI, tx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeSuccess(w, r, http.StatusOK, res)
}

// readUpload returns the CSV body of a multipart upload or a raw text/csv
// request, capped at the configured upload size.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "", nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", errNoUpload
		}
		return nil, "", err
	}
	return file, header.Filename, nil
}

// describeError fills the page error fields and returns the response status
func (h *Handler) describeError(r *http.Request, page *fraudPage, err error) int {
	status, code, message, details := h.errorHandler.HandleError(err)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		page.FieldErrors = validationErr.Fields
		if msgs, ok := validationErr.Fields[uploadField]; ok {
			message = msgs[0]
		} else {
			message = "Please correct the highlighted fields."
		}
	} else if details != nil {
		message = withDetailSuffix(message, details)
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "scoring request failed", "code", code, "error", err)
	}
	page.Error = message
	return status
}

// withDetailSuffix appends the location of a parse error
func withDetailSuffix(message string, details map[string]interface{}) string {
	var parts []string
	if line, ok := details["line"]; ok {
		parts = append(parts, fmt.Sprintf("line %v", line))
	}
	if field, ok := details["field"]; ok {
		parts = append(parts, fmt.Sprintf("column %v", field))
	}
	if len(parts) == 0 {
		return message
	}
	return fmt.Sprintf("%s (%s)", message, strings.Join(parts, ", "))
}

func formValues(r *http.Request) manualForm {
	f := r.PostForm
	return manualForm{
		CardNumber:          f.Get("card_number"),
		CardIPProvince:      f.Get("card_ip_province"),
		TransactionProvince: f.Get("transaction_province"),
		TransactionTime:     f.Get("transaction_time"),
		DeviceID:            f.Get("device_id"),
		CardType:            f.Get("card_type"),
		TransactionType:     f.Get("transaction_type"),
		Amount:              f.Get("amount"),
		OldBalanceOrig:      f.Get("oldbalanceOrg"),
		NewBalanceOrig:      f.Get("newbalanceOrig"),
		OldBalanceDest:      f.Get("oldbalanceDest"),
		NewBalanceDest:      f.Get("newbalanceDest"),
	}
}
