package port

import "github.com/ontoptea/orderhub/internal/core/domain"

// Printer drives one physical or virtual receipt printer on the print-client
// side. Implementations are selected by configuration, never at runtime.
type Printer interface {
	Print(job *domain.PrintJob) error
}
