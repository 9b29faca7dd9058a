package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceNumberPrefix starts every generated invoice number
const InvoiceNumberPrefix = "INV"

// GenerateInvoiceNumber produces a candidate invoice number of the form
// INV-YYYYMM-XXXXXXXX where the suffix is random. The suffix is not
// guaranteed unique; callers must check against the repository and retry
// on collision (see application.InvoiceService.nextInvoiceNumber).
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", InvoiceNumberPrefix, now.Format("200601"), suffix)
}
