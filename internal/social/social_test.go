package social_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/opinionlab/internal/opinion"
	"github.com/san-kum/opinionlab/internal/social"
)

var _ = Describe("Model", func() {
	newRNG := func(seed int64) *rand.Rand {
		return rand.New(rand.NewSource(seed))
	}

	Describe("New", func() {
		It("splits the population by the informed fraction", func() {
			m, err := social.New(300, 0.3, 0.52, 12, newRNG(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.InformedCount()).To(Equal(90))
			Expect(m.FollowerCount()).To(Equal(210))
			Expect(m.Spins().Valid()).To(BeTrue())
		})

		It("floors the informed count", func() {
			m, err := social.New(10, 0.35, 0.52, 3, newRNG(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.InformedCount()).To(Equal(3))
		})

		It("rejects invalid parameters", func() {
			_, err := social.New(0, 0.3, 0.52, 12, newRNG(1))
			Expect(errors.Is(err, opinion.ErrPopulationSize)).To(BeTrue())

			_, err = social.New(100, -0.1, 0.52, 12, newRNG(1))
			Expect(errors.Is(err, opinion.ErrFractionRange)).To(BeTrue())

			_, err = social.New(100, 1.5, 0.52, 12, newRNG(1))
			Expect(errors.Is(err, opinion.ErrFractionRange)).To(BeTrue())

			_, err = social.New(100, 0.3, 0.0, 12, newRNG(1))
			Expect(errors.Is(err, opinion.ErrProbabilityRange)).To(BeTrue())

			_, err = social.New(100, 0.3, 1.0, 12, newRNG(1))
			Expect(errors.Is(err, opinion.ErrProbabilityRange)).To(BeTrue())

			_, err = social.New(100, 0.3, 0.52, 0, newRNG(1))
			Expect(errors.Is(err, opinion.ErrPollSize)).To(BeTrue())
		})

		It("starts near the mixture accuracy for the baseline scenario", func() {
			// N=300, z=0.3, p=0.52: expected overall accuracy is
			// 0.3*0.52 + 0.7*0.5 = 0.506.
			const trials = 60
			sum := 0.0
			for seed := int64(0); seed < trials; seed++ {
				m, err := social.New(300, 0.3, 0.52, 12, newRNG(seed))
				Expect(err).NotTo(HaveOccurred())
				sum += m.OverallAccuracy()
			}
			Expect(sum / trials).To(BeNumerically("~", 0.506, 0.02))
		})
	})

	Describe("accuracies", func() {
		It("stay within [0, 1]", func() {
			m, err := social.New(50, 0.4, 0.7, 5, newRNG(7))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 500; i++ {
				Expect(m.FollowerAccuracy()).To(And(
					BeNumerically(">=", 0), BeNumerically("<=", 1)))
				Expect(m.OverallAccuracy()).To(And(
					BeNumerically(">=", 0), BeNumerically("<=", 1)))
				Expect(m.InformedAccuracy()).To(And(
					BeNumerically(">=", 0), BeNumerically("<=", 1)))
				Expect(m.Step()).To(Succeed())
			}
		})

		It("defines the accuracy of an empty class as zero", func() {
			m, err := social.New(10, 0.0, 0.52, 3, newRNG(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.InformedCount()).To(Equal(0))
			Expect(m.InformedAccuracy()).To(BeZero())
		})
	})

	Describe("Step", func() {
		It("never mutates informed agents", func() {
			m, err := social.New(100, 0.5, 0.8, 7, newRNG(3))
			Expect(err).NotTo(HaveOccurred())

			informed := m.Spins()[:m.InformedCount()].Clone()
			for i := 0; i < 2000; i++ {
				Expect(m.Step()).To(Succeed())
			}

			Expect(m.Spins()[:m.InformedCount()]).To(Equal(informed))
			Expect(m.Spins().Valid()).To(BeTrue())
		})

		It("fails when the population has no followers", func() {
			m, err := social.New(10, 1.0, 0.9, 3, newRNG(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.FollowerCount()).To(Equal(0))
			Expect(errors.Is(m.Step(), opinion.ErrNoFollowers)).To(BeTrue())
		})

		It("follows the sign of the poll mean and keeps opinion on ties", func() {
			// Drive the model with a seeded source and replicate its draw
			// sequence on a shadow source to predict every update exactly,
			// including the zero-mean keep-current rule.
			const seed, agents, poll = 99, 20, 4
			fraction := 0.5

			m, err := social.New(agents, fraction, 0.6, poll, newRNG(seed))
			Expect(err).NotTo(HaveOccurred())

			shadow := newRNG(seed)
			for i := 0; i < agents; i++ {
				shadow.Float64() // constructor draws
			}

			informed := m.InformedCount()
			followers := agents - informed
			ties := 0

			for i := 0; i < 5000; i++ {
				idx := informed + shadow.Intn(followers)
				sum := 0
				for k := 0; k < poll; k++ {
					sum += int(m.Spins()[shadow.Intn(agents)])
				}

				expected := m.Spins()[idx]
				if sum > 0 {
					expected = opinion.Up
				} else if sum < 0 {
					expected = opinion.Down
				} else {
					ties++
				}

				Expect(m.Step()).To(Succeed())
				Expect(m.Spins()[idx]).To(Equal(expected))
			}

			// An even poll size over a mixed population must hit the
			// exact-zero branch; otherwise the tie rule went untested.
			Expect(ties).To(BeNumerically(">", 0))
		})
	})

	Describe("Run", func() {
		It("returns traces of exactly the requested length", func() {
			m, err := social.New(60, 0.25, 0.6, 5, newRNG(11))
			Expect(err).NotTo(HaveOccurred())

			follower, overall, err := m.Run(250)
			Expect(err).NotTo(HaveOccurred())
			Expect(follower).To(HaveLen(250))
			Expect(overall).To(HaveLen(250))
		})

		It("records statistics before the step is applied", func() {
			m, err := social.New(60, 0.25, 0.6, 5, newRNG(11))
			Expect(err).NotTo(HaveOccurred())

			first := m.FollowerAccuracy()
			follower, _, err := m.Run(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(follower[0]).To(Equal(first))
		})

		It("rejects non-positive step counts", func() {
			m, err := social.New(60, 0.25, 0.6, 5, newRNG(11))
			Expect(err).NotTo(HaveOccurred())

			_, _, err = m.Run(0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("parameters", func() {
		It("exposes the poll size for runtime adjustment", func() {
			m, err := social.New(60, 0.25, 0.6, 5, newRNG(11))
			Expect(err).NotTo(HaveOccurred())

			Expect(m.GetParams()).To(HaveKeyWithValue("poll", 5.0))
			Expect(m.SetParam("poll", 9)).To(Succeed())
			Expect(m.GetParams()).To(HaveKeyWithValue("poll", 9.0))

			Expect(errors.Is(m.SetParam("poll", 0), opinion.ErrPollSize)).To(BeTrue())
			Expect(errors.Is(m.SetParam("gravity", 1), opinion.ErrUnknownParam)).To(BeTrue())
		})
	})
})
