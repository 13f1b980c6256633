package fat32

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	sdformat "github.com/herbderby/NdsSDFormat"
)

// ClusterMap tracks which data clusters are in use. At format time the map
// only ever holds the root-directory reservation, but it is the single
// source for the free count and next-free hint that FSInfo advertises, so
// the two values can never drift apart.
type ClusterMap struct {
	inUse         bitmap.Bitmap
	totalClusters uint32
}

// NewClusterMap creates a map for a freshly computed geometry with every
// cluster free.
func NewClusterMap(geo Geometry) *ClusterMap {
	return &ClusterMap{
		inUse:         bitmap.New(int(geo.TotalDataClusters)),
		totalClusters: geo.TotalDataClusters,
	}
}

// index maps a cluster number onto the bitmap. Clusters are numbered from
// 2; FAT entries 0 and 1 are reserved and not part of the data region.
func (m *ClusterMap) index(cluster Cluster) (int, error) {
	if cluster < 2 || uint32(cluster-2) >= m.totalClusters {
		return 0, sdformat.ErrUnknown.WithMessage(fmt.Sprintf(
			"cluster %d not in range [2, %d)", cluster, m.totalClusters+2))
	}
	return int(cluster - 2), nil
}

// Reserve marks a cluster as in use.
func (m *ClusterMap) Reserve(cluster Cluster) error {
	i, err := m.index(cluster)
	if err != nil {
		return err
	}
	m.inUse.Set(i, true)
	return nil
}

// FreeCount returns the number of clusters not yet reserved.
func (m *ClusterMap) FreeCount() uint32 {
	free := m.totalClusters
	for i := 0; i < int(m.totalClusters); i++ {
		if m.inUse.Get(i) {
			free--
		}
	}
	return free
}

// NextFree returns the lowest-numbered free cluster, for the FSInfo
// next-free hint. On a device with no free clusters it falls back to the
// first data cluster; FSInfo hints are advisory, never authoritative.
func (m *ClusterMap) NextFree() Cluster {
	for i := 0; i < int(m.totalClusters); i++ {
		if !m.inUse.Get(i) {
			return Cluster(i + 2)
		}
	}
	return 2
}
