package validation_test

import (
	"testing"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every field is valid", func() {
		v := validation.NewValidator()
		v.Field("email", "jane@acme.io").Required().Email()
		v.Field("password", "longenough").Required().Password(8)
		Expect(v.Validate()).To(BeNil())
	})

	It("reports one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "   ").Required().MinLength(2)
		v.Field("email", "not-an-email").Required().Email()
		v.Field("password", "short").Password(8)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.StatusCode).To(Equal(400))

		details, ok := err.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(3))
		Expect(details.Errors[0].Field).To(Equal("name"))
		Expect(details.Errors[1].Code).To(Equal(string(errors.ErrCodeInvalidEmail)))
		Expect(details.Errors[2].Code).To(Equal(string(errors.ErrCodeWeakPassword)))
	})

	It("rejects values outside an allowed set", func() {
		v := validation.NewValidator()
		v.Field("role", "OWNER").OneOf(errors.ErrCodeInvalidRole, "EMPLOYEE", "MANAGER")

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("role must be one of"))
	})

	DescribeTable("IsEmail",
		func(input string, expected bool) {
			Expect(validation.IsEmail(input)).To(Equal(expected))
		},
		Entry("plain address", "jane@acme.io", true),
		Entry("display name form", "Jane <jane@acme.io>", false),
		Entry("missing domain dot", "jane@localhost", false),
		Entry("missing at", "jane.acme.io", false),
		Entry("empty", "", false),
	)

	It("normalizes emails", func() {
		Expect(validation.NormalizeEmail("  Jane@Acme.IO ")).To(Equal("jane@acme.io"))
	})
})
