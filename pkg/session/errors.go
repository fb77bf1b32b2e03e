package session

import (
	"errors"
	"strings"

	"github.com/rmo02/dash-financeiro/pkg/normalize"
	"github.com/rmo02/dash-financeiro/pkg/parser"
)

var (
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrStaleGeneration is returned by a load that finished after a newer
	// load had started. Its result is discarded.
	ErrStaleGeneration = errors.New("stale dataset generation")
)

const (
	msgEmptyDataset   = "A planilha não contém dados."
	msgMissingColumns = "Colunas obrigatórias não encontradas: "
	msgUnreadable     = "Erro ao processar o arquivo Excel. Verifique se o formato está correto."
	msgNoDataset      = "Nenhuma planilha carregada."
)

// Message turns a load error into the sentence shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var mce *normalize.MissingColumnsError
	switch {
	case errors.Is(err, normalize.ErrEmptyDataset):
		return msgEmptyDataset
	case errors.As(err, &mce):
		return msgMissingColumns + strings.Join(mce.Missing, ", ")
	case errors.Is(err, normalize.ErrMissingColumns):
		return msgMissingColumns + strings.Join(normalize.RequiredColumns(), ", ")
	case errors.Is(err, ErrNoDataset):
		return msgNoDataset
	case errors.Is(err, parser.ErrUnreadableWorkbook):
		return msgUnreadable
	default:
		return msgUnreadable
	}
}
