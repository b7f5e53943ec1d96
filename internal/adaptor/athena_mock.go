package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/pkg/errors"
)

// AthenaMock is on memory AthenaClient mock. States is consumed one
// by one on each GetQueryExecution call, the last state is sticky.
// ResultPages, when set, is served page by page instead of ResultSet.
type AthenaMock struct {
	QueryID      string
	States       []string
	StateReason  string
	ResultSet    *athena.ResultSet
	ResultPages  []*athena.GetQueryResultsOutput
	NamedQueries []*athena.NamedQuery

	StartErr error
	GetErr   error

	StartInput  *athena.StartQueryExecutionInput
	GetCount    int
	ResultCalls int
}

// NewAthenaMock is constructor of Athena Mock
func NewAthenaMock() *AthenaMock {
	return &AthenaMock{QueryID: "mock-query-id"}
}

func (x *AthenaMock) StartQueryExecution(input *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
	if x.StartErr != nil {
		return nil, x.StartErr
	}
	x.StartInput = input
	return &athena.StartQueryExecutionOutput{
		QueryExecutionId: aws.String(x.QueryID),
	}, nil
}

func (x *AthenaMock) GetQueryExecution(input *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
	if x.GetErr != nil {
		return nil, x.GetErr
	}
	if len(x.States) == 0 {
		return nil, errors.New("no states configured in AthenaMock")
	}

	state := x.States[0]
	if len(x.States) > 1 {
		x.States = x.States[1:]
	}
	x.GetCount++

	return &athena.GetQueryExecutionOutput{
		QueryExecution: &athena.QueryExecution{
			Status: &athena.QueryExecutionStatus{
				State:             aws.String(state),
				StateChangeReason: aws.String(x.StateReason),
			},
		},
	}, nil
}

func (x *AthenaMock) GetQueryResults(input *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
	x.ResultCalls++
	if len(x.ResultPages) > 0 {
		page := x.ResultPages[0]
		x.ResultPages = x.ResultPages[1:]
		return page, nil
	}
	return &athena.GetQueryResultsOutput{ResultSet: x.ResultSet}, nil
}

func (x *AthenaMock) ListNamedQueries(input *athena.ListNamedQueriesInput) (*athena.ListNamedQueriesOutput, error) {
	var ids []*string
	for _, q := range x.NamedQueries {
		ids = append(ids, q.NamedQueryId)
	}
	return &athena.ListNamedQueriesOutput{NamedQueryIds: ids}, nil
}

func (x *AthenaMock) BatchGetNamedQuery(input *athena.BatchGetNamedQueryInput) (*athena.BatchGetNamedQueryOutput, error) {
	byID := map[string]*athena.NamedQuery{}
	for _, q := range x.NamedQueries {
		byID[aws.StringValue(q.NamedQueryId)] = q
	}

	var queries []*athena.NamedQuery
	for _, id := range input.NamedQueryIds {
		if q, ok := byID[aws.StringValue(id)]; ok {
			queries = append(queries, q)
		}
	}
	return &athena.BatchGetNamedQueryOutput{NamedQueries: queries}, nil
}
