package renderer

import (
	"fmt"
	"html"
	"strings"
	"text/template"
)

const soapEnvelopeOpen = `<?xml version="1.0" encoding="utf-8"?>` +
	`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body>`
const soapEnvelopeClose = `</s:Body></s:Envelope>`

var avTransportSetURITmpl = template.Must(template.New("setAVTransportURI").Parse(
	`<u:SetAVTransportURI xmlns:u="urn:schemas-upnp-org:service:AVTransport:1">` +
		`<InstanceID>0</InstanceID>` +
		`<CurrentURI>{{.URI}}</CurrentURI>` +
		`<CurrentURIMetaData>{{.Metadata}}</CurrentURIMetaData>` +
		`</u:SetAVTransportURI>`))

var avTransportPlayTmpl = `<u:Play xmlns:u="urn:schemas-upnp-org:service:AVTransport:1"><InstanceID>0</InstanceID><Speed>1</Speed></u:Play>`
var avTransportStopTmpl = `<u:Stop xmlns:u="urn:schemas-upnp-org:service:AVTransport:1"><InstanceID>0</InstanceID></u:Stop>`
var avTransportGetVolumeTmpl = `<u:GetVolume xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1"><InstanceID>0</InstanceID><Channel>Master</Channel></u:GetVolume>`

var avTransportSetVolumeTmpl = template.Must(template.New("setVolume").Parse(
	`<u:SetVolume xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1">` +
		`<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredVolume>{{.Volume}}</DesiredVolume>` +
		`</u:SetVolume>`))

var ohInsertTmpl = template.Must(template.New("ohInsert").Parse(
	`<u:Insert xmlns:u="urn:av-openhome-org:service:Playlist:1">` +
		`<AfterId>0</AfterId><Uri>{{.URI}}</Uri><Metadata>{{.Metadata}}</Metadata>` +
		`</u:Insert>`))

var ohPlayTmpl = `<u:Play xmlns:u="urn:av-openhome-org:service:Playlist:1"></u:Play>`
var ohStopTmpl = `<u:Stop xmlns:u="urn:av-openhome-org:service:Playlist:1"></u:Stop>`
var ohDeleteAllTmpl = `<u:DeleteAll xmlns:u="urn:av-openhome-org:service:Playlist:1"></u:DeleteAll>`
var ohVolumeGetTmpl = `<u:Volume xmlns:u="urn:av-openhome-org:service:Volume:1"></u:Volume>`

var ohVolumeSetTmpl = template.Must(template.New("ohSetVolume").Parse(
	`<u:SetVolume xmlns:u="urn:av-openhome-org:service:Volume:1"><Value>{{.Volume}}</Value></u:SetVolume>`))

func envelope(action string) string {
	return soapEnvelopeOpen + action + soapEnvelopeClose
}

func soapActionHeader(serviceType, action string) string {
	return fmt.Sprintf(`"%s#%s"`, serviceType, action)
}

func renderTemplate(tmpl *template.Template, data any) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return ""
	}
	return sb.String()
}

func setAVTransportURIBody(streamURL, didl string) string {
	action := renderTemplate(avTransportSetURITmpl, struct{ URI, Metadata string }{
		URI:      html.EscapeString(streamURL),
		Metadata: html.EscapeString(didl),
	})
	return envelope(action)
}

func insertBody(streamURL, didl string) string {
	action := renderTemplate(ohInsertTmpl, struct{ URI, Metadata string }{
		URI:      html.EscapeString(streamURL),
		Metadata: html.EscapeString(didl),
	})
	return envelope(action)
}

func setVolumeBody(volume int) string {
	return envelope(renderTemplate(avTransportSetVolumeTmpl, struct{ Volume int }{Volume: volume}))
}

func ohSetVolumeBody(volume int) string {
	return envelope(renderTemplate(ohVolumeSetTmpl, struct{ Volume int }{Volume: volume}))
}
