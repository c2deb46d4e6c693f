package service

import (
	"strings"
	"testing"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/client"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ImportServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ImportService
}

func TestImportService(t *testing.T) {
	suite.Run(t, new(ImportServiceSuite))
}

func (s *ImportServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewImportService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *ImportServiceSuite) importCSV(entity types.TableName, body string) (*dto.ImportResult, error) {
	return s.service.Import(s.GetContext(), entity, strings.NewReader(body))
}

func (s *ImportServiceSuite) TestImportClientsSkipsDuplicateEmail() {
	res, err := s.importCSV(types.TableNameClients, "email,name\na@x.com,Alice\nA@X.COM,Alicia\n")
	s.Require().NoError(err)
	s.Equal(types.TableNameClients, res.Entity)
	s.Equal(2, res.Total)
	s.Equal(1, res.Imported)
	s.Equal(1, res.Skipped)
	s.Equal(0, res.Failed)

	clients, err := s.GetStores().ClientRepo.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(clients, 1)
	s.Equal("Alice", clients[0].Name)
	s.Equal("a@x.com", clients[0].Email)
}

func (s *ImportServiceSuite) TestImportClientsFallsBackToName() {
	res, err := s.importCSV(types.TableNameClients, "name,email\nAcme,\n acme ,\nGlobex,\n")
	s.Require().NoError(err)
	s.Equal(3, res.Total)
	s.Equal(2, res.Imported)
	s.Equal(1, res.Skipped)
}

func (s *ImportServiceSuite) TestImportReportsFailedRows() {
	seedClient(&s.BaseServiceTestSuite, "cli_1", "Existing", "taken@x.test")

	body := strings.Join([]string{
		"name,email",
		"Alice,alice@x.test",
		",nobody@x.test",
		"Bob,not-an-email",
		"Carol,taken@x.test",
		"Dora,dora@x.test",
	}, "\n")
	res, err := s.importCSV(types.TableNameClients, body)
	s.Require().NoError(err)
	s.Equal(5, res.Total)
	s.Equal(2, res.Imported)
	s.Equal(0, res.Skipped)
	s.Equal(3, res.Failed)
	s.Equal(res.Total, res.Imported+res.Skipped+res.Failed)
	s.Equal([]int{3, 4, 5}, lo.Map(res.Errors, func(e dto.ImportRowError, _ int) int { return e.Row }))
	for _, e := range res.Errors {
		s.NotEmpty(e.Message)
	}
}

func (s *ImportServiceSuite) TestImportCountsSingleEmptyFieldRow() {
	res, err := s.importCSV(types.TableNameClients, "name\nAlice\n\"\"\nBob\n")
	s.Require().NoError(err)
	s.Equal(3, res.Total)
	s.Equal(2, res.Imported)
	s.Equal(0, res.Skipped)
	s.Equal(1, res.Failed)
	s.Equal(res.Total, res.Imported+res.Skipped+res.Failed)
	s.Require().Len(res.Errors, 1)
	s.Equal(3, res.Errors[0].Row)

	clients, err := s.GetStores().ClientRepo.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"Alice", "Bob"}, lo.Map(clients, func(c *client.Client, _ int) string { return c.Name }))
}

func (s *ImportServiceSuite) TestImportDevicesBySerial() {
	seedDevice(&s.BaseServiceTestSuite, "dev_1", "SN-9", "laptop")

	body := "Name,Serial Number,Category\n" +
		"MacBook,SN-1,laptop\n" +
		"MacBook again, sn-1 ,laptop\n" +
		"Pixel,SN-2,phone\n" +
		"Old laptop,SN-9,laptop\n"
	res, err := s.importCSV(types.TableNameDevices, body)
	s.Require().NoError(err)
	s.Equal(4, res.Total)
	s.Equal(2, res.Imported)
	s.Equal(1, res.Skipped)
	s.Equal(1, res.Failed)
	s.Require().Len(res.Errors, 1)
	s.Equal(5, res.Errors[0].Row)

	d, err := s.GetStores().DeviceRepo.GetBySerial(s.GetContext(), "SN-2")
	s.Require().NoError(err)
	s.Equal("phone", d.Category)
	s.Equal(types.DeviceStatusInStock, d.DeviceStatus)
}

func (s *ImportServiceSuite) TestImportProvidersPadsShortRows() {
	res, err := s.importCSV(types.TableNameProviders, "\ufeffname,email,website\nAcme Leasing\nGlobex,ops@globex.test,https://globex.test\n")
	s.Require().NoError(err)
	s.Equal(2, res.Imported)

	count, err := s.GetStores().ProviderRepo.Count(s.GetContext(), types.NewNoLimitProviderFilter())
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *ImportServiceSuite) TestImportHeaderOnly() {
	res, err := s.importCSV(types.TableNameClients, "name,email\n")
	s.Require().NoError(err)
	s.Equal(0, res.Total)
	s.Equal(0, res.Imported)
}

func (s *ImportServiceSuite) TestImportRejectsInput() {
	tests := []struct {
		name   string
		entity types.TableName
		body   string
	}{
		{"unsupported entity", types.TableNameInvoices, "number\nINV-1\n"},
		{"empty file", types.TableNameClients, ""},
		{"missing column", types.TableNameDevices, "name,category\nMacBook,laptop\n"},
		{"binary upload", types.TableNameClients, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.importCSV(tt.entity, tt.body)
			s.True(ierr.IsValidation(err), "got %v", err)
		})
	}
}

func (s *ImportServiceSuite) TestImportEnforcesMaxRows() {
	cfg := s.GetConfig()
	previous := cfg.Import.MaxRows
	cfg.Import.MaxRows = 1
	defer func() { cfg.Import.MaxRows = previous }()

	_, err := s.importCSV(types.TableNameClients, "name\nAlice\nBob\n")
	s.True(ierr.IsValidation(err))

	count, err := s.GetStores().ClientRepo.Count(s.GetContext(), types.NewNoLimitClientFilter())
	s.Require().NoError(err)
	s.Zero(count)
}
