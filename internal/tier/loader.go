package tier

import (
	"context"
	"fmt"
	"os"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
)

// LoadFile reads a YAML tier table from path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table file: %w", err)
	}
	return Parse(data)
}

// ConfigMapLoader reads the tier table from a ConfigMap's "tiers" key.
type ConfigMapLoader struct {
	client    kubernetes.Interface
	namespace string
	name      string
	logger    *logger.Logger
}

func NewConfigMapLoader(log *logger.Logger, client kubernetes.Interface, namespace, name string) *ConfigMapLoader {
	if log == nil {
		log = logger.Production()
	}
	return &ConfigMapLoader{
		client:    client,
		namespace: namespace,
		name:      name,
		logger:    log,
	}
}

// Load fetches and parses the ConfigMap once.
func (l *ConfigMapLoader) Load(ctx context.Context) (*Table, error) {
	cm, err := l.client.CoreV1().ConfigMaps(l.namespace).Get(ctx, l.name, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, fmt.Errorf("tier table not found, provide configuration in ConfigMap %s/%s", l.namespace, l.name)
		}
		l.logger.Error("Failed to load tier table from ConfigMap",
			"configmap", l.name,
			"namespace", l.namespace,
			"error", err,
		)
		return nil, fmt.Errorf("failed to load tier table: %w", err)
	}

	data, exists := cm.Data[constant.TierTableConfigMapKey]
	if !exists {
		l.logger.Warn("Tiers key not found in ConfigMap",
			"configmap", l.name,
			"key", constant.TierTableConfigMapKey,
		)
		return nil, fmt.Errorf("ConfigMap %s/%s has no %q key", l.namespace, l.name, constant.TierTableConfigMapKey)
	}

	return Parse([]byte(data))
}
