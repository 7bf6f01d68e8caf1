package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
)

// Columnas esperadas: codigo;descripcion;unidad;stock_minimo;stock_maximo;costo
const minColumns = 2

// rowError fila que no se pudo interpretar.
type rowError struct {
	Line int
	Err  error
}

func (e rowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// parseCatalog decodifica el CSV Latin-1 separado por ';'. La primera fila es cabecera
// si su primera columna no parece un código (contiene "codigo" o "código").
func parseCatalog(r io.Reader) ([]dto.CreateProductRequest, []rowError, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		out    []dto.CreateProductRequest
		errs   []rowError
		lineNo int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, nil, fmt.Errorf("leer csv: %w", err)
		}
		if lineNo == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < minColumns || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		req, err := toRequest(rec)
		if err != nil {
			errs = append(errs, rowError{Line: lineNo, Err: err})
			continue
		}
		out = append(out, req)
	}
	return out, errs, nil
}

func isHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return strings.Contains(first, "codigo") || strings.Contains(first, "código")
}

func toRequest(rec []string) (dto.CreateProductRequest, error) {
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	req := dto.CreateProductRequest{
		Code:        col(0),
		Description: col(1),
		Unit:        strings.ToUpper(col(2)),
	}
	var err error
	if req.StockMinimum, err = atoiOrZero(col(3)); err != nil {
		return req, fmt.Errorf("stock_minimo: %w", err)
	}
	if req.StockMaximum, err = atoiOrZero(col(4)); err != nil {
		return req, fmt.Errorf("stock_maximo: %w", err)
	}
	if raw := col(5); raw != "" {
		cost, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			return req, fmt.Errorf("costo: %w", err)
		}
		req.CostPrice = &cost
	}
	return req, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
