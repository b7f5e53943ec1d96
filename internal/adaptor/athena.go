package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
)

// AthenaClientFactory is interface of AthenaClient constructor
type AthenaClientFactory func(region string) AthenaClient

// AthenaClient is interface of AWS Athena SDK
type AthenaClient interface {
	StartQueryExecution(input *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(input *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(input *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error)
	ListNamedQueries(input *athena.ListNamedQueriesInput) (*athena.ListNamedQueriesOutput, error)
	BatchGetNamedQuery(input *athena.BatchGetNamedQueryInput) (*athena.BatchGetNamedQueryOutput, error)
}

// NewAthenaClient creates actual AWS Athena SDK client
func NewAthenaClient(region string) AthenaClient {
	ssn := session.New(&aws.Config{Region: aws.String(region)})
	return athena.New(ssn)
}
