package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/piternoufi/quarry-orders-api/models"
)

// utf8BOM makes Excel open the export as UTF-8; client and product names are
// routinely Hebrew.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OrdersCSVHeader is the column layout of the orders export
var OrdersCSVHeader = []string{
	"order_number", "client", "site", "product", "supplier",
	"quantity_tons", "delivery_date", "status", "rating",
}

// ExportOrdersCSV renders the order snapshot as a UTF-8 CSV document with a
// BOM, comma-delimited, every field quoted, one row per order. Orders must
// have their Client/Site/Product associations preloaded; missing associations
// render as empty cells.
func ExportOrdersCSV(orders []models.Order) []byte {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)

	writeCSVRow(buf, OrdersCSVHeader)

	for i := range orders {
		o := &orders[i]

		site := ""
		if o.Site != nil {
			site = o.Site.SiteName
		}
		rating := ""
		if o.Rating != nil {
			rating = fmt.Sprintf("%d", *o.Rating)
		}

		writeCSVRow(buf, []string{
			o.OrderNumber,
			o.Client.Name,
			site,
			o.Product.NameHe,
			o.Supplier,
			fmt.Sprintf("%g", o.QuantityTons),
			o.DeliveryDate.Format("02/01/2006"),
			o.ComputeEffectiveStatus(),
			rating,
		})
	}

	return buf.Bytes()
}

// writeCSVRow writes one comma-delimited row with every field quoted
func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
