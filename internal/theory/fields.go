package theory

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

// rawFieldsFromScatMatrs builds fields point by point from the scattering
// matrix, for kernels that do not compute fields themselves. pos holds
// (k*r, theta, phi).
func rawFieldsFromScatMatrs(k ScatMatrixKernel, pos utils.Spherical, s scatterer.Scatterer, mediumWavevec, mediumIndex float64, illumPolarization []float64) ([]Vec, error) {
	scatMatrs, err := k.RawScatMatrs(s, pos, mediumWavevec, mediumIndex)
	if err != nil {
		return nil, err
	}
	if len(scatMatrs) != pos.Len() {
		return nil, fmt.Errorf("%d scattering matrices for %d positions: %w", len(scatMatrs), pos.Len(), utils.ErrShapeMismatch)
	}
	einc := [2]float64{illumPolarization[0], illumPolarization[1]}
	fields := make([]Vec, pos.Len())
	for i := range fields {
		kr, theta, phi := pos.At(i)
		eTheta, ePhi := calcScatField(kr, phi, scatMatrs[i], einc)
		fields[i] = fieldsToCart(eTheta, ePhi, theta, phi)
	}
	return fields, nil
}

// calcScatField returns the theta and phi components of the scattered field
// in Bohren & Huffman form:
//
//	[E_par; E_perp] = e^{ikr}/(-ikr) * [[S2, S3], [S4, S1]] * [Einc_par; Einc_perp]
//
// with E_par along theta-hat and E_perp along -phi-hat. Points at infinite
// radius carry no field.
func calcScatField(kr, phi float64, sm ScatMatr, einc [2]float64) (eTheta, ePhi complex128) {
	if math.IsInf(kr, 0) {
		return 0, 0
	}
	sinPhi, cosPhi := math.Sincos(phi)
	par := complex(einc[0]*cosPhi+einc[1]*sinPhi, 0)
	perp := complex(einc[0]*sinPhi-einc[1]*cosPhi, 0)
	prefactor := cmplx.Exp(complex(0, kr)) / complex(0, -kr)

	eTheta = prefactor * (sm[0][0]*par + sm[0][1]*perp)
	ePhi = -prefactor * (sm[1][0]*par + sm[1][1]*perp)
	return
}

// fieldsToCart rotates a transverse spherical-basis field into the lab frame.
func fieldsToCart(eTheta, ePhi complex128, theta, phi float64) Vec {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return Vec{
		complex(cosTheta*cosPhi, 0)*eTheta - complex(sinPhi, 0)*ePhi,
		complex(cosTheta*sinPhi, 0)*eTheta + complex(cosPhi, 0)*ePhi,
		complex(-sinTheta, 0) * eTheta,
	}
}
