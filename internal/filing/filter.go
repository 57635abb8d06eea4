package filing

import "strings"

// ConvertibleBondKeyword matches the 案件類別 text of convertible-bond
// filings (轉換公司債).
const ConvertibleBondKeyword = "轉換公司債"

// FilterConvertibleBond keeps filings whose category contains the
// convertible-bond keyword, optionally narrowed to companies whose name
// contains companyKeyword. Order is preserved.
func FilterConvertibleBond(records []Record, companyKeyword string) []Record {
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if !strings.Contains(rec.Category, ConvertibleBondKeyword) {
			continue
		}
		if companyKeyword != "" && !strings.Contains(rec.CompanyName, companyKeyword) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
