package msdata

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Controlled vocabulary accessions used while reading mzML
// (http://www.peptideatlas.org/tmp/mzML1.1.0.html).
const (
	cvMSLevel         = "MS:1000511"
	cvPositiveScan    = "MS:1000130"
	cvNegativeScan    = "MS:1000129"
	cvTotalIonCurrent = "MS:1000285"
	cvScanStartTime   = "MS:1000016"
	cvMzArray         = "MS:1000514"
	cvIntensityArray  = "MS:1000515"
	cvWavelengthArray = "MS:1000617"
	cvFloat64         = "MS:1000523"
	cvFloat32         = "MS:1000521"
	cvZlibCompression = "MS:1000574"
	cvNoCompression   = "MS:1000576"
	cvEMRSpectrum     = "MS:1000804"
	cvUnitMinute      = "UO:0000031"
	cvUnitSecond      = "UO:0000010"
)

type mzMLContent struct {
	XMLName xml.Name `xml:"mzML"`
	Run     mzMLRun  `xml:"run"`
}

type mzMLRun struct {
	ID           string       `xml:"id,attr"`
	SpectrumList spectrumList `xml:"spectrumList"`
}

type spectrumList struct {
	Count    int            `xml:"count,attr"`
	Spectrum []mzMLSpectrum `xml:"spectrum"`
}

type mzMLSpectrum struct {
	Index               int                 `xml:"index,attr"`
	ID                  string              `xml:"id,attr"`
	DefaultArrayLength  int                 `xml:"defaultArrayLength,attr"`
	CvPar               []cvParam           `xml:"cvParam"`
	ScanList            scanList            `xml:"scanList"`
	BinaryDataArrayList binaryDataArrayList `xml:"binaryDataArrayList"`
}

type scanList struct {
	Count int        `xml:"count,attr"`
	Scan  []mzMLScan `xml:"scan"`
}

type mzMLScan struct {
	CvPar []cvParam `xml:"cvParam"`
}

type binaryDataArrayList struct {
	Count           int               `xml:"count,attr"`
	BinaryDataArray []binaryDataArray `xml:"binaryDataArray"`
}

type binaryDataArray struct {
	EncodedLength int       `xml:"encodedLength,attr"`
	CvPar         []cvParam `xml:"cvParam"`
	Binary        string    `xml:"binary"`
}

type cvParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}

// ReadMzML parses an mzML document and separates its spectra into positive
// and negative MS channels plus a PDA spectral matrix. The overall
// chromatogram is the TIC trace of the positive channel, falling back to the
// negative channel when no positive scans exist.
func ReadMzML(r io.Reader) (*RawData, error) {
	var content mzMLContent
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	raw := &RawData{}
	var pdaRows [][]float64
	var pdaRT []float64
	var pdaAxis []float64

	for i := range content.Run.SpectrumList.Spectrum {
		spec := &content.Run.SpectrumList.Spectrum[i]
		rt, err := scanStartTime(spec)
		if err != nil {
			return nil, err
		}

		if hasCv(spec.CvPar, cvEMRSpectrum) {
			wavelengths, intensities, err := decodePDAArrays(spec)
			if err != nil {
				return nil, err
			}
			if pdaAxis == nil {
				pdaAxis = wavelengths
			}
			if len(intensities) != len(pdaAxis) {
				return nil, fmt.Errorf("%w: PDA scan %d has %d points, axis has %d",
					ErrUnsupportedFormat, spec.Index, len(intensities), len(pdaAxis))
			}
			pdaRows = append(pdaRows, intensities)
			pdaRT = append(pdaRT, rt)
			continue
		}

		if level, ok := cvValue(spec.CvPar, cvMSLevel); ok && level != "1" {
			continue
		}

		mz, intensity, err := decodeMSArrays(spec)
		if err != nil {
			return nil, err
		}
		tic := ticOf(spec, intensity)
		point := Spectrum{RT: rt, MZ: mz, Intensity: intensity}

		if hasCv(spec.CvPar, cvNegativeScan) {
			raw.Negative.Spectra = append(raw.Negative.Spectra, point)
			raw.Negative.TIC.RT = append(raw.Negative.TIC.RT, rt)
			raw.Negative.TIC.Values = append(raw.Negative.TIC.Values, tic)
		} else {
			raw.Positive.Spectra = append(raw.Positive.Spectra, point)
			raw.Positive.TIC.RT = append(raw.Positive.TIC.RT, rt)
			raw.Positive.TIC.Values = append(raw.Positive.TIC.Values, tic)
		}
	}

	if len(pdaRows) > 0 {
		matrix, err := NewSpectralMatrix(pdaRows, pdaRT, pdaAxis)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		raw.PDA = matrix
	}

	if raw.Positive.TIC.Len() > 0 {
		raw.Chromatogram = raw.Positive.TIC
	} else {
		raw.Chromatogram = raw.Negative.TIC
	}
	return raw, nil
}

func scanStartTime(spec *mzMLSpectrum) (float64, error) {
	for _, scan := range spec.ScanList.Scan {
		for _, cv := range scan.CvPar {
			if cv.Accession != cvScanStartTime {
				continue
			}
			rt, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: scan %d start time %q", ErrUnreadableFile, spec.Index, cv.Value)
			}
			if cv.UnitAccession == cvUnitSecond {
				rt /= 60
			}
			return rt, nil
		}
	}
	return 0, fmt.Errorf("%w: scan %d has no start time", ErrUnsupportedFormat, spec.Index)
}

func ticOf(spec *mzMLSpectrum, intensity []float64) float64 {
	if v, ok := cvValue(spec.CvPar, cvTotalIonCurrent); ok {
		if tic, err := strconv.ParseFloat(v, 64); err == nil {
			return tic
		}
	}
	var sum float64
	for _, v := range intensity {
		sum += v
	}
	return sum
}

func decodeMSArrays(spec *mzMLSpectrum) (mz, intensity []float64, err error) {
	for _, array := range spec.BinaryDataArrayList.BinaryDataArray {
		switch {
		case hasCv(array.CvPar, cvMzArray):
			mz, err = decodeBinaryArray(array)
		case hasCv(array.CvPar, cvIntensityArray):
			intensity, err = decodeBinaryArray(array)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if mz == nil || intensity == nil {
		return nil, nil, fmt.Errorf("%w: scan %d lacks m/z or intensity array", ErrUnsupportedFormat, spec.Index)
	}
	if len(mz) != len(intensity) {
		return nil, nil, fmt.Errorf("%w: scan %d m/z length %d != intensity length %d",
			ErrUnsupportedFormat, spec.Index, len(mz), len(intensity))
	}
	return mz, intensity, nil
}

func decodePDAArrays(spec *mzMLSpectrum) (wavelengths, intensities []float64, err error) {
	for _, array := range spec.BinaryDataArrayList.BinaryDataArray {
		switch {
		case hasCv(array.CvPar, cvWavelengthArray):
			wavelengths, err = decodeBinaryArray(array)
		case hasCv(array.CvPar, cvIntensityArray):
			intensities, err = decodeBinaryArray(array)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if wavelengths == nil || intensities == nil {
		return nil, nil, fmt.Errorf("%w: PDA scan %d lacks wavelength or intensity array", ErrUnsupportedFormat, spec.Index)
	}
	return wavelengths, intensities, nil
}

func decodeBinaryArray(array binaryDataArray) ([]float64, error) {
	data, err := base64.StdEncoding.DecodeString(array.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrUnreadableFile, err)
	}

	if hasCv(array.CvPar, cvZlibCompression) {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrUnreadableFile, err)
		}
		data, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrUnreadableFile, err)
		}
	}

	switch {
	case hasCv(array.CvPar, cvFloat64):
		if len(data)%8 != 0 {
			return nil, fmt.Errorf("%w: binary length %d not a multiple of 8", ErrUnreadableFile, len(data))
		}
		out := make([]float64, len(data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	case hasCv(array.CvPar, cvFloat32):
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("%w: binary length %d not a multiple of 4", ErrUnreadableFile, len(data))
		}
		out := make([]float64, len(data)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: binary array precision not declared", ErrUnsupportedFormat)
	}
}

func hasCv(params []cvParam, accession string) bool {
	for _, cv := range params {
		if cv.Accession == accession {
			return true
		}
	}
	return false
}

func cvValue(params []cvParam, accession string) (string, bool) {
	for _, cv := range params {
		if cv.Accession == accession {
			return cv.Value, true
		}
	}
	return "", false
}
