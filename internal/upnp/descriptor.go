// Package upnp parses UPnP device descriptors and builds the DIDL-Lite
// metadata and SOAP service classification the renderer controller needs.
package upnp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
)

// ServiceKind identifies which control protocol a renderer supports.
type ServiceKind int

const (
	ServiceNone ServiceKind = iota
	ServiceAVTransport
	ServiceOpenHomePlaylist
)

// Descriptor is the subset of a UPnP device descriptor this program acts on.
type Descriptor struct {
	FriendlyName string
	URLBase      string

	AVTransportControlURL string
	OHPlaylistControlURL  string
	HasQPlay               bool
}

const descriptorFetchTimeout = 5 * time.Second

// Fetch retrieves and parses the device descriptor XML at location.
func Fetch(ctx context.Context, client *http.Client, location string) (*Descriptor, error) {
	reqCtx, cancel := context.WithTimeout(ctx, descriptorFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, location, nil)
	if err != nil {
		return nil, swyherrors.New(err).Component("upnp").Category(swyherrors.CategoryNetwork).Context("location", location).Build()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, swyherrors.New(err).Component("upnp").Category(swyherrors.CategoryNetwork).Context("location", location).Build()
	}
	defer resp.Body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, swyherrors.New(err).Component("upnp").Category(swyherrors.CategorySOAP).Context("location", location).Context("operation", "parse_descriptor").Build()
	}

	return parseDescriptor(doc, location)
}

func parseDescriptor(doc *etree.Document, location string) (*Descriptor, error) {
	root := doc.Root()
	if root == nil {
		return nil, swyherrors.New(nil).Component("upnp").Category(swyherrors.CategorySOAP).Context("error", "empty device descriptor").Build()
	}

	device := root.FindElement("./device")
	if device == nil {
		return nil, swyherrors.New(nil).Component("upnp").Category(swyherrors.CategorySOAP).Context("error", "no <device> element").Build()
	}

	d := &Descriptor{
		FriendlyName: textOrDefault(device.FindElement("./friendlyName"), "Unknown renderer"),
		URLBase:      textOrDefault(root.FindElement("./URLBase"), ""),
	}
	d.URLBase = repairURLBase(d.URLBase, location)

	for _, svc := range device.FindElements(".//serviceList/service") {
		serviceType := textOrDefault(svc.FindElement("./serviceType"), "")
		controlURL := textOrDefault(svc.FindElement("./controlURL"), "")
		resolved := resolveURL(d.URLBase, controlURL)

		switch {
		case strings.Contains(serviceType, "AVTransport"):
			d.AVTransportControlURL = resolved
		case strings.Contains(strings.ToLower(serviceType), "openhome") && strings.Contains(serviceType, "Playlist"):
			d.OHPlaylistControlURL = resolved
		case strings.Contains(serviceType, "QPlay"):
			d.HasQPlay = true
		}
	}

	return d, nil
}

// PreferredService implements the spec §4.7 tie-break: prefer OpenHome
// Playlist over AVTransport unless the device advertises QPlay, in which
// case fall back to AVTransport.
func (d *Descriptor) PreferredService() (ServiceKind, string) {
	if d.OHPlaylistControlURL != "" && !d.HasQPlay {
		return ServiceOpenHomePlaylist, d.OHPlaylistControlURL
	}
	if d.AVTransportControlURL != "" {
		return ServiceAVTransport, d.AVTransportControlURL
	}
	if d.OHPlaylistControlURL != "" {
		return ServiceOpenHomePlaylist, d.OHPlaylistControlURL
	}
	return ServiceNone, ""
}

func textOrDefault(el *etree.Element, def string) string {
	if el == nil {
		return def
	}
	return strings.TrimSpace(el.Text())
}

// repairURLBase re-derives the base URL from the descriptor's own location
// when the declared URLBase is missing or carries an invalid port (e.g. 0),
// per spec §4.7: "Invalid URLBase ports... are tolerated by re-deriving
// from the descriptor URL."
func repairURLBase(declared, location string) string {
	locURL, err := url.Parse(location)
	if err != nil {
		return declared
	}

	if declared == "" {
		return locURL.Scheme + "://" + locURL.Host
	}

	u, err := url.Parse(declared)
	if err != nil {
		return locURL.Scheme + "://" + locURL.Host
	}
	port := u.Port()
	if port == "" && u.Host != "" {
		return declared
	}
	if p, perr := strconv.Atoi(port); perr == nil && p > 0 {
		return declared
	}
	return locURL.Scheme + "://" + locURL.Host
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
