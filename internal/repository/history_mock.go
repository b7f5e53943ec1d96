package repository

// HistoryMock is on memory HistoryRepository mock
type HistoryMock struct {
	Records []*SearchRecord
}

// NewHistoryMock is constructor of HistoryMock
func NewHistoryMock() *HistoryMock {
	return &HistoryMock{}
}

func (x *HistoryMock) PutSearch(record *SearchRecord) error {
	x.Records = append(x.Records, record)
	return nil
}

func (x *HistoryMock) GetSearch(searchID string) (*SearchRecord, error) {
	for _, record := range x.Records {
		if record.SearchID == searchID {
			return record, nil
		}
	}
	return nil, nil
}

func (x *HistoryMock) ListSearches(limit int64) ([]*SearchRecord, error) {
	records := x.Records
	if limit > 0 && int64(len(records)) > limit {
		records = records[:limit]
	}
	return records, nil
}
