// Package capture opens and supervises the single host audio input device
// swyh-go streams from.
package capture

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/gen2brain/malgo"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
)

// DeviceInfo describes one enumerated capture-capable device.
type DeviceInfo struct {
	Index      int
	Name       string
	ID         string
	IsDefault  bool
	info       malgo.DeviceInfo
}

func backendForPlatform() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, swyherrors.New(nil).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("error", "unsupported operating system").
			Context("os", runtime.GOOS).
			Build()
	}
}

// EnumerateDevices lists every capture-capable input device visible to the
// host audio layer, in the same order the host reports them (the order a
// zero-based index selector refers to).
func EnumerateDevices() ([]DeviceInfo, error) {
	backend, err := backendForPlatform()
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, swyherrors.New(err).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("operation", "init_context").
			Build()
	}
	defer func() { _ = ctx.Uninit() }()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, swyherrors.New(err).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("operation", "enumerate_devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      infos[i].Name(),
			ID:        infos[i].ID.String(),
			IsDefault: infos[i].IsDefault == 1,
			info:      infos[i],
		})
	}
	return devices, nil
}

// ResolveSelector finds the device a -s flag selector refers to. A selector
// is either a bare zero-based index, an exact name, or "name:n" to pick the
// n-th device sharing that name when the host reports duplicates (spec:
// "duplicate names resolve by appended index").
func ResolveSelector(devices []DeviceInfo, selector string) (*DeviceInfo, error) {
	if selector == "" || selector == "default" || selector == "sysdefault" {
		for i := range devices {
			if devices[i].IsDefault {
				return &devices[i], nil
			}
		}
		if len(devices) > 0 {
			return &devices[0], nil
		}
		return nil, errNoDevices(selector)
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		for i := range devices {
			if devices[i].Index == idx {
				return &devices[i], nil
			}
		}
		return nil, errNoDevices(selector)
	}

	name, want := selector, 0
	if at := strings.LastIndex(selector, ":"); at >= 0 {
		if n, err := strconv.Atoi(selector[at+1:]); err == nil {
			name = selector[:at]
			want = n
		}
	}

	seen := 0
	for i := range devices {
		if devices[i].Name == name {
			if seen == want {
				return &devices[i], nil
			}
			seen++
		}
	}

	for i := range devices {
		if strings.Contains(devices[i].Name, name) {
			return &devices[i], nil
		}
	}

	return nil, errNoDevices(selector)
}

func errNoDevices(selector string) error {
	return swyherrors.New(nil).
		Component("capture").
		Category(swyherrors.CategoryAudioDevice).
		Context("selector", selector).
		Context("error", "no matching audio device found").
		Build()
}
