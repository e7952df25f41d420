package dimacs_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cp-hybrid/presolve/cmd/dimacs"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func TestDimacs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dimacs Suite")
}

var _ = Describe("Dimacs", func() {
	It("should fail if there is no header", func() {
		problem := "1 2 3 0\n"
		_, err := dimacs.NewDimacs(bytes.NewReader([]byte(problem)))
		Expect(err).To(HaveOccurred())
	})
	It("should fail if there are no clauses", func() {
		problem := "p cnf 3 3\n"
		_, err := dimacs.NewDimacs(bytes.NewReader([]byte(problem)))
		Expect(err).To(HaveOccurred())
	})
	It("should parse valid dimacs", func() {
		problem := "p cnf 3 1\n1 2 3 0\n"
		d, err := dimacs.NewDimacs(bytes.NewReader([]byte(problem)))
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Variables()).To(Equal([]string{"1", "2", "3"}))
		Expect(d.Clauses()).To(Equal([]string{"1 2 3"}))
	})
})

var _ = Describe("GenerateConstraints", func() {
	It("builds one bool_or per clause, zero-based and negation-preserving", func() {
		problem := "p cnf 3 2\n1 2 3 0\n1 -2 0\n"
		d, err := dimacs.NewDimacs(bytes.NewReader([]byte(problem)))
		Expect(err).ToNot(HaveOccurred())

		constraints, err := dimacs.GenerateConstraints(d)
		Expect(err).ToNot(HaveOccurred())
		Expect(constraints).To(HaveLen(2))

		first, ok := constraints[0].(*model.BoolOr)
		Expect(ok).To(BeTrue())
		Expect(first.Literals).To(Equal([]model.VarRef{0, 1, 2}))

		second, ok := constraints[1].(*model.BoolOr)
		Expect(ok).To(BeTrue())
		Expect(second.Literals).To(Equal([]model.VarRef{0, model.Negate(1)}))
	})

	It("rejects a clause with a non-numeric literal", func() {
		problem := "p cnf 1 1\nx 0\n"
		d, err := dimacs.NewDimacs(bytes.NewReader([]byte(problem)))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid dimacs command"))
		Expect(d).To(BeNil())
	})
})
