// Package fitstest writes small FITS fixtures for tests.
package fitstest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/solarmap/internal/fitsfile"
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// EITStart is the observation time of the first EIT fixture frame
var EITStart = time.Date(2004, 3, 1, 0, 0, 10, 0, time.UTC)

// Headers holds a minimal header for each instrument, keyed by map kind
var Headers = map[string]map[string]any{
	"HMISynopticMap": {"TELESCOP": "SDO/HMI", "CONTENT": "Carrington Synoptic Chart Of Br Field", "DATE-OBS": "2018-05-01T00:00:00"},
	"HMIMap":         {"TELESCOP": "SDO/HMI", "CONTENT": "MAGNETOGRAM", "DATE-OBS": "2011-06-07T06:33:02.700"},
	"AIAMap":         {"INSTRUME": "AIA_3", "TELESCOP": "SDO/AIA", "WAVELNTH": 171, "DATE-OBS": "2011-06-07T06:33:02.770"},
	"EITMap":         {"INSTRUME": "EIT", "TELESCOP": "SOHO", "WAVELNTH": 195, "DATE-OBS": "2004-03-01T00:00:10.000"},
	"LASCOMap":       {"INSTRUME": "LASCO", "DETECTOR": "C2", "DATE-OBS": "2002/09/05", "TIME-OBS": "20:06:05"},
	"MDIMap":         {"INSTRUME": "MDI", "DATE-OBS": "2003-11-01T00:00:00"},
	"EUVIMap":        {"INSTRUME": "SECCHI", "DETECTOR": "EUVI", "OBSRVTRY": "STEREO_A", "DATE-OBS": "2007-05-03T00:00:00"},
	"CORMap":         {"INSTRUME": "SECCHI", "DETECTOR": "COR2", "OBSRVTRY": "STEREO_A", "DATE-OBS": "2008-06-12T00:00:00"},
	"HIMap":          {"INSTRUME": "SECCHI", "DETECTOR": "HI1", "OBSRVTRY": "STEREO_A", "DATE-OBS": "2008-06-12T00:00:00"},
	"RHESSIMap":      {"INSTRUME": "RHESSI", "TELESCOP": "RHESSI", "DATE-OBS": "2002-02-20T11:06:00"},
	"SOTMap":         {"INSTRUME": "SOT/WB", "TELESCOP": "HINODE", "DATE-OBS": "2015-10-13T23:13:44"},
	"SWAPMap":        {"INSTRUME": "SWAP", "TELESCOP": "PROBA2", "DATE-OBS": "2015-10-13T23:13:44"},
	"XRTMap":         {"INSTRUME": "XRT", "TELESCOP": "HINODE", "DATE-OBS": "2014-12-20T18:00:00"},
	"SXTMap":         {"INSTRUME": "SXT", "DATE-OBS": "1991-11-13T00:00:00"},
	"TRACEMap":       {"INSTRUME": "TRACE", "DATE-OBS": "2001-06-21T00:00:00"},
	"SUVIMap":        {"INSTRUME": "GOES-R Series Solar Ultraviolet Imager", "TELESCOP": "GOES-16", "DATE-OBS": "2019-08-28T00:00:00"},
	"EUIMap":         {"INSTRUME": "EUI", "OBSRVTRY": "Solar Orbiter", "DATE-OBS": "2020-05-20T00:00:00"},
	"IRISMap":        {"INSTRUME": "SJI", "TELESCOP": "IRIS", "DATE-OBS": "2014-01-01T00:00:00"},
	"KCorMap":        {"INSTRUME": "COSMO K-Coronagraph", "DATE-OBS": "2014-11-05T00:00:00"},
	"GenericMap":     {"OBJECT": "Sun", "DATE-OBS": "2010-01-01T00:00:00"},
}

// NewPair builds a 3x4 pair with the given header
func NewPair(t testing.TB, header map[string]any) meta.Pair {
	t.Helper()
	data := make([]float64, 12)
	for i := range data {
		data[i] = float64(i)
	}
	arr, err := meta.NewArray([]int{3, 4}, data)
	require.NoError(t, err)
	pair, err := meta.NewPair(arr, meta.NewMetadata(header))
	require.NoError(t, err)
	return pair
}

// WriteFile writes a single-image FITS file with the given header and returns its path
func WriteFile(t testing.TB, dir, name string, header map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	m := maps.NewGenericMap(NewPair(t, header))
	require.NoError(t, fitsfile.NewWriter(nil).Save(m, path, fitsfile.FormatFITS, false))
	return path
}

// EITName returns the file name of EIT fixture frame n
func EITName(n int) string {
	return fmt.Sprintf("efz20040301.0%d0010_s.fits", n)
}

// EITDirectory writes ten EIT frames, one minute apart, into a new directory
func EITDirectory(t testing.TB) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, 10)
	for n := range 10 {
		header := map[string]any{
			"INSTRUME": "EIT",
			"TELESCOP": "SOHO",
			"WAVELNTH": 195,
			"DATE-OBS": EITStart.Add(time.Duration(n) * time.Minute).Format("2006-01-02T15:04:05.000"),
		}
		paths = append(paths, WriteFile(t, dir, EITName(n), header))
	}
	return dir, paths
}
