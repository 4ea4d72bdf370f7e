package schema

// Normalized operational schema the warehouse is loaded from. Code tables
// are keyed by a numeric id; every snapshot table holds at most one row
// per application or loan.
const sourceTemplate = `
CREATE SCHEMA IF NOT EXISTS {{schema}};

CREATE TABLE IF NOT EXISTS {{schema}}.dim_purpose (
    purpose_id   INTEGER PRIMARY KEY,
    purpose_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_application_type (
    application_type_id   INTEGER PRIMARY KEY,
    application_type_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_verification_status (
    verification_status_id   INTEGER PRIMARY KEY,
    verification_status_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_policy_code (
    policy_code_id INTEGER PRIMARY KEY,
    policy_code    VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_disbursement_method (
    disbursement_method_id   INTEGER PRIMARY KEY,
    disbursement_method_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_grade (
    grade_id   INTEGER PRIMARY KEY,
    grade_code VARCHAR(8) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_sub_grade (
    sub_grade_id   INTEGER PRIMARY KEY,
    sub_grade_code VARCHAR(8) NOT NULL,
    grade_id       INTEGER NOT NULL REFERENCES {{schema}}.dim_grade (grade_id)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_term (
    term_id     INTEGER PRIMARY KEY,
    term_months INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_home_ownership (
    home_ownership_id   INTEGER PRIMARY KEY,
    home_ownership_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_emp_length (
    emp_length_id INTEGER PRIMARY KEY,
    years         INTEGER NULL,
    original_text VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_loan_status (
    loan_status_id   INTEGER PRIMARY KEY,
    loan_status_code VARCHAR(128) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_settlement_status (
    settlement_status_id   INTEGER PRIMARY KEY,
    settlement_status_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_type (
    hardship_type_id   INTEGER PRIMARY KEY,
    hardship_type_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_status (
    hardship_status_id   INTEGER PRIMARY KEY,
    hardship_status_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_loan_status (
    hardship_loan_status_id   INTEGER PRIMARY KEY,
    hardship_loan_status_code VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_state (
    state_id   INTEGER PRIMARY KEY,
    state_code VARCHAR(2) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_zip3 (
    zip3_id INTEGER PRIMARY KEY,
    zip3    VARCHAR(3) NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.application (
    application_id         BIGINT PRIMARY KEY,
    application_date       DATE NULL,
    purpose_id             INTEGER NULL,
    application_type_id    INTEGER NULL,
    verification_status_id INTEGER NULL,
    policy_code_id         INTEGER NULL,
    disbursement_method_id INTEGER NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.application_address (
    application_id BIGINT PRIMARY KEY,
    state_id       INTEGER NULL,
    zip3_id        INTEGER NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.employment (
    application_id    BIGINT PRIMARY KEY,
    emp_title         VARCHAR(128) NULL,
    home_ownership_id INTEGER NULL,
    emp_length_id     INTEGER NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.applicant_financials_snapshot (
    application_id   BIGINT PRIMARY KEY,
    annual_inc       DECIMAL(14,2) NULL,
    annual_inc_joint DECIMAL(14,2) NULL,
    dti              DECIMAL(7,2) NULL,
    dti_joint        DECIMAL(7,2) NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.credit_history_snapshot (
    application_id         BIGINT PRIMARY KEY,
    inq_last_6mths         INTEGER NULL,
    delinq_2yrs            INTEGER NULL,
    mths_since_last_delinq INTEGER NULL,
    mths_since_recent_inq  INTEGER NULL,
    pub_rec                INTEGER NULL,
    total_acc              INTEGER NULL,
    open_acc               INTEGER NULL,
    revol_bal              DECIMAL(14,2) NULL,
    revol_util             DECIMAL(6,2) NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.loan (
    loan_id        BIGINT PRIMARY KEY,
    application_id BIGINT NOT NULL,
    decision_date  DATE NULL,
    grade_id       INTEGER NULL,
    sub_grade_id   INTEGER NULL,
    term_id        INTEGER NULL,
    loan_status_id INTEGER NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.loan_terms (
    loan_id           BIGINT PRIMARY KEY,
    requested_amount  DECIMAL(12,2) NULL,
    funded_amount     DECIMAL(12,2) NULL,
    funded_amount_inv DECIMAL(12,2) NULL,
    installment       DECIMAL(10,2) NULL,
    int_rate          DECIMAL(6,3) NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.payment_status_snapshot (
    loan_id                 BIGINT PRIMARY KEY,
    last_pymnt_d            DATE NULL,
    next_pymnt_d            DATE NULL,
    last_pymnt_amnt         DECIMAL(12,2) NULL,
    total_pymnt             DECIMAL(14,2) NULL,
    total_pymnt_inv         DECIMAL(14,2) NULL,
    total_rec_prncp         DECIMAL(14,2) NULL,
    total_rec_int           DECIMAL(14,2) NULL,
    total_rec_late_fee      DECIMAL(12,2) NULL,
    recoveries              DECIMAL(12,2) NULL,
    collection_recovery_fee DECIMAL(12,2) NULL,
    out_prncp               DECIMAL(14,2) NULL,
    out_prncp_inv           DECIMAL(14,2) NULL,
    pymnt_plan              VARCHAR(1) NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.settlement_case (
    loan_id               BIGINT PRIMARY KEY,
    settlement_status_id  INTEGER NULL,
    debt_settlement_flag  VARCHAR(1) NULL,
    settlement_amount     DECIMAL(12,2) NULL,
    settlement_percentage DECIMAL(6,2) NULL,
    settlement_date       DATE NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.hardship_case (
    loan_id                 BIGINT PRIMARY KEY,
    hardship_type_id        INTEGER NULL,
    hardship_status_id      INTEGER NULL,
    hardship_loan_status_id INTEGER NULL,
    hardship_amount         DECIMAL(12,2) NULL,
    hardship_start_date     DATE NULL,
    hardship_end_date       DATE NULL,
    payment_plan_start_date DATE NULL,
    deferral_term           INTEGER NULL,
    hardship_length         INTEGER NULL,
    hardship_dpd            INTEGER NULL
);
`
