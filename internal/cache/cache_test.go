package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/TemirB/sensor-relay/internal/domain"
)

func TestWarm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockrepo(ctrl)
	cap := 3
	ids := []uint32{1, 2, 3}

	repo.EXPECT().RecentDeviceIDs(gomock.Any(), cap).Return(ids, nil)
	for _, id := range ids {
		repo.EXPECT().LatestByDevice(gomock.Any(), id).Return(&domain.Reading{DeviceID: id, ReadTime: time.Now()}, nil)
	}

	c, err := New(cap)
	require.NoError(t, err)
	require.Equal(t, 3, c.Warm(context.Background(), repo))

	for _, id := range ids {
		_, ok := c.Get(id)
		require.Truef(t, ok, "expected device %d to be cached after Warm", id)
	}
}

func TestWarmIgnoresRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockrepo(ctrl)
	cap := 5

	repo.EXPECT().RecentDeviceIDs(gomock.Any(), cap).Return(nil, errors.New("repo error"))
	repo.EXPECT().LatestByDevice(gomock.Any(), gomock.Any()).Times(0)

	c, err := New(cap)
	require.NoError(t, err)
	require.Zero(t, c.Warm(context.Background(), repo))
}

func TestWarmPartialErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockrepo(ctrl)
	cap := 4

	repo.EXPECT().RecentDeviceIDs(gomock.Any(), cap).Return([]uint32{10, 11, 12}, nil)
	repo.EXPECT().LatestByDevice(gomock.Any(), uint32(10)).Return(&domain.Reading{DeviceID: 10}, nil)
	repo.EXPECT().LatestByDevice(gomock.Any(), uint32(11)).Return(nil, errors.New("db read err"))
	repo.EXPECT().LatestByDevice(gomock.Any(), uint32(12)).Return(&domain.Reading{DeviceID: 12}, nil)

	c, err := New(cap)
	require.NoError(t, err)
	require.Equal(t, 2, c.Warm(context.Background(), repo))

	_, ok := c.Get(10)
	require.True(t, ok)
	_, ok = c.Get(12)
	require.True(t, ok)
	_, ok = c.Get(11)
	require.False(t, ok)
}

func TestSetKeepsNewest(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	c.Set(&domain.Reading{DeviceID: 1, EventID: 2, Temperature: 20, ReadTime: t0.Add(time.Second)})
	c.Set(&domain.Reading{DeviceID: 1, EventID: 1, Temperature: 10, ReadTime: t0})

	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(2), got.EventID)

	c.Set(&domain.Reading{DeviceID: 1, EventID: 3, Temperature: 30, ReadTime: t0.Add(2 * time.Second)})
	got, _ = c.Get(1)
	require.Equal(t, float32(30), got.Temperature)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	now := time.Now()
	c.Set(&domain.Reading{DeviceID: 1, ReadTime: now})
	c.Set(&domain.Reading{DeviceID: 2, ReadTime: now})
	c.Get(1)
	c.Set(&domain.Reading{DeviceID: 3, ReadTime: now})

	require.Equal(t, 2, c.Len())
	_, ok := c.Get(2)
	require.False(t, ok)
}

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
}
