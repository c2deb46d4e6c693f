package service

import (
	"testing"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type DeviceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DeviceService
}

func TestDeviceService(t *testing.T) {
	suite.Run(t, new(DeviceServiceSuite))
}

func (s *DeviceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDeviceService(newTestParams(&s.BaseServiceTestSuite))
	seedClient(&s.BaseServiceTestSuite, "cli_1", "Alice", "alice@x.test")
}

func (s *DeviceServiceSuite) TestCreateDevice() {
	tests := []struct {
		name       string
		req        dto.CreateDeviceRequest
		wantErr    error
		wantStatus types.DeviceStatus
	}{
		{
			name:       "defaults to in stock",
			req:        dto.CreateDeviceRequest{Name: "Router", SerialNumber: "SN-1"},
			wantStatus: types.DeviceStatusInStock,
		},
		{
			name:       "client implies assigned",
			req:        dto.CreateDeviceRequest{Name: "Phone", SerialNumber: "SN-2", ClientID: lo.ToPtr("cli_1")},
			wantStatus: types.DeviceStatusAssigned,
		},
		{
			name:    "unknown client",
			req:     dto.CreateDeviceRequest{Name: "Phone", SerialNumber: "SN-3", ClientID: lo.ToPtr("cli_missing")},
			wantErr: ierr.ErrValidation,
		},
		{
			name:    "assigned without client",
			req:     dto.CreateDeviceRequest{Name: "Phone", SerialNumber: "SN-4", DeviceStatus: types.DeviceStatusAssigned},
			wantErr: ierr.ErrValidation,
		},
		{
			name:    "bad purchase date",
			req:     dto.CreateDeviceRequest{Name: "Phone", SerialNumber: "SN-5", PurchaseDate: "31/01/2024"},
			wantErr: ierr.ErrValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateDevice(s.GetContext(), tt.req)
			if tt.wantErr != nil {
				s.Error(err)
				s.True(ierr.Is(err, tt.wantErr))
				return
			}
			s.NoError(err)
			s.Equal(tt.wantStatus, resp.DeviceStatus)
		})
	}
}

func (s *DeviceServiceSuite) TestSerialNumberIsUniqueCaseInsensitive() {
	_, err := s.service.CreateDevice(s.GetContext(), dto.CreateDeviceRequest{Name: "A", SerialNumber: "abc-123"})
	s.NoError(err)

	_, err = s.service.CreateDevice(s.GetContext(), dto.CreateDeviceRequest{Name: "B", SerialNumber: " ABC-123 "})
	s.True(ierr.IsAlreadyExists(err))
}

func (s *DeviceServiceSuite) TestMaintenanceSinceFollowsStatus() {
	created, err := s.service.CreateDevice(s.GetContext(), dto.CreateDeviceRequest{Name: "A", SerialNumber: "SN-1"})
	s.Require().NoError(err)
	s.Nil(created.MaintenanceSince)

	updated, err := s.service.UpdateDevice(s.GetContext(), created.ID, dto.UpdateDeviceRequest{
		DeviceStatus: lo.ToPtr(types.DeviceStatusMaintenance),
	})
	s.Require().NoError(err)
	s.NotNil(updated.MaintenanceSince)

	updated, err = s.service.UpdateDevice(s.GetContext(), created.ID, dto.UpdateDeviceRequest{
		DeviceStatus: lo.ToPtr(types.DeviceStatusInStock),
	})
	s.Require().NoError(err)
	s.Nil(updated.MaintenanceSince)
}

func (s *DeviceServiceSuite) TestUnassignRequiresStatusChange() {
	created, err := s.service.CreateDevice(s.GetContext(), dto.CreateDeviceRequest{
		Name: "A", SerialNumber: "SN-1", ClientID: lo.ToPtr("cli_1"),
	})
	s.Require().NoError(err)

	_, err = s.service.UpdateDevice(s.GetContext(), created.ID, dto.UpdateDeviceRequest{ClientID: lo.ToPtr("")})
	s.True(ierr.IsValidation(err))

	updated, err := s.service.UpdateDevice(s.GetContext(), created.ID, dto.UpdateDeviceRequest{
		ClientID:     lo.ToPtr(""),
		DeviceStatus: lo.ToPtr(types.DeviceStatusInStock),
	})
	s.NoError(err)
	s.Nil(updated.ClientID)
}

func (s *DeviceServiceSuite) TestGetDevicesFilters() {
	seedDevice(&s.BaseServiceTestSuite, "dev_1", "SN-1", "router")
	seedDevice(&s.BaseServiceTestSuite, "dev_2", "SN-2", "phone")
	seedDevice(&s.BaseServiceTestSuite, "dev_3", "SN-3", "Phone")

	filter := types.NewDeviceFilter()
	filter.Category = "phone"
	resp, err := s.service.GetDevices(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)

	s.NoError(s.service.DeleteDevice(s.GetContext(), "dev_2"))
	resp, err = s.service.GetDevices(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal(1, resp.Pagination.Total)
}
