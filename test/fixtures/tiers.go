package fixtures

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
)

const (
	TestNamespace     = "halo"
	TestTierConfigMap = "csr-tier-table"
)

// TierTableYAML is a custom tier table used across tests. Entries are
// deliberately out of order; loaders must sort them.
const TierTableYAML = `
floor: Unranked
tiers:
- name: Contender
  min: 1000
- name: Champion
  min: 2000
- name: Challenger
  min: 1500
`

// CreateTierConfigMap creates a ConfigMap holding TierTableYAML.
func CreateTierConfigMap(namespace string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      TestTierConfigMap,
			Namespace: namespace,
		},
		Data: map[string]string{
			constant.TierTableConfigMapKey: TierTableYAML,
		},
	}
}
