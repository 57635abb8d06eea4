package dataflows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/yclin/bondwatch/internal/filing"
)

// fscBaseURL is where the FSC publishes the daily disclosure workbook.
const fscBaseURL = "https://www.fsc.gov.tw/userfiles/file"

// ErrNotPublished reports that no workbook exists for the requested
// date. The FSC publishes nothing on weekends and holidays, so a 404
// is an ordinary no-filings day, not a failure.
var ErrNotPublished = errors.New("disclosure table not published")

// Column names of the 申報案件彙總表 sheet. The parser locates them by
// text, not by position, so column reordering survives.
const (
	colCode        = "證券代號"
	colCompanyType = "公司型態"
	colClosureType = "結案類型"
	colCompanyName = "公司名稱"
	colCategory    = "案件類別"
	colReceived    = "收文日期"
	colEffective   = "生效日期"
)

// headerScanRows bounds the search for the header row; the sheet carries
// a title row (and sometimes a merged-cell artifact row) above it.
const headerScanRows = 5

// FSCClient downloads and parses the FSC daily case-disclosure table.
type FSCClient struct {
	client  *resty.Client
	baseURL string
	retry   *RetryConfig
	log     *logrus.Entry
}

// NewFSCClient creates a new FSC disclosure client.
func NewFSCClient() *FSCClient {
	client := resty.New()
	client.SetTimeout(60 * time.Second)

	return &FSCClient{
		client:  client,
		baseURL: fscBaseURL,
		retry:   DefaultRetryConfig(),
		log:     logrus.WithField("component", "fsc"),
	}
}

// DailyURL returns the download URL of the disclosure summary workbook
// published for the given date.
func DailyURL(date time.Time) string {
	return dailyURL(fscBaseURL, date)
}

func dailyURL(base string, date time.Time) string {
	return fmt.Sprintf("%s/%s申報案件彙總表.xlsx", base, date.Format("20060102"))
}

// FetchDaily downloads the workbook for date and parses it into records.
// A 404 surfaces as ErrNotPublished without retrying; any other failure
// is retried and, if it persists, fatal for the run.
func (fc *FSCClient) FetchDaily(ctx context.Context, date time.Time) ([]filing.Record, error) {
	url := dailyURL(fc.baseURL, date)
	fc.log.WithField("url", url).Info("downloading daily disclosure table")

	var body []byte
	err := WithRetry(fc.retry, func() error {
		resp, err := fc.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", url, err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return Abort(fmt.Errorf("%w: %s", ErrNotPublished, url))
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("download error %d for %s", resp.StatusCode(), url)
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ParseDaily(bytes.NewReader(body))
}

// ParseDaily reads a disclosure workbook and extracts its table rows.
// The header row is found by scanning for the 證券代號 column; everything
// above it is title decoration.
func ParseDaily(r io.Reader) ([]filing.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	headerIdx, cols, err := locateHeader(rows)
	if err != nil {
		return nil, err
	}

	records := make([]filing.Record, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		records = append(records, filing.Record{
			Code:         cellAt(row, cols[colCode]),
			CompanyType:  cellAt(row, cols[colCompanyType]),
			ClosureType:  cellAt(row, cols[colClosureType]),
			CompanyName:  cellAt(row, cols[colCompanyName]),
			Category:     cellAt(row, cols[colCategory]),
			ReceivedRaw:  cellAt(row, cols[colReceived]),
			EffectiveRaw: cellAt(row, cols[colEffective]),
		})
	}

	return records, nil
}

// locateHeader finds the header row and maps required column names to
// their indexes. A missing column is an error: silent format drift would
// otherwise surface as an empty report.
func locateHeader(rows [][]string) (int, map[string]int, error) {
	required := []string{
		colCode, colCompanyType, colClosureType,
		colCompanyName, colCategory, colReceived, colEffective,
	}

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		cols := make(map[string]int, len(required))
		for j, cell := range rows[i] {
			cols[strings.TrimSpace(cell)] = j
		}
		if _, ok := cols[colCode]; !ok {
			continue
		}
		for _, name := range required {
			if _, ok := cols[name]; !ok {
				return 0, nil, fmt.Errorf("column %s not found in disclosure table", name)
			}
		}
		return i, cols, nil
	}

	return 0, nil, fmt.Errorf("header row not found in disclosure table")
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
