//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema

// Warehouse star schema. Dimension natural keys carry unique constraints;
// surrogate keys are generated by the engine. {{schema}} and {{identity}}
// are substituted by Render.
const warehouseTemplate = `
CREATE SCHEMA IF NOT EXISTS {{schema}};

-- Reference dimensions
CREATE TABLE IF NOT EXISTS {{schema}}.dim_purpose (
    purpose_key  {{identity}},
    purpose_code VARCHAR(64) NOT NULL,
    UNIQUE (purpose_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_application_type (
    application_type_key  {{identity}},
    application_type_code VARCHAR(64) NOT NULL,
    UNIQUE (application_type_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_verification_status (
    verification_status_key  {{identity}},
    verification_status_code VARCHAR(64) NOT NULL,
    UNIQUE (verification_status_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_policy_code (
    policy_code_key {{identity}},
    policy_code     VARCHAR(64) NOT NULL,
    UNIQUE (policy_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_disbursement_method (
    disbursement_method_key  {{identity}},
    disbursement_method_code VARCHAR(64) NOT NULL,
    UNIQUE (disbursement_method_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_grade (
    grade_key  {{identity}},
    grade_code VARCHAR(8) NOT NULL,
    UNIQUE (grade_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_sub_grade (
    sub_grade_key  {{identity}},
    sub_grade_code VARCHAR(8) NOT NULL,
    grade_key      INTEGER NOT NULL,
    UNIQUE (sub_grade_code),
    FOREIGN KEY (grade_key) REFERENCES {{schema}}.dim_grade (grade_key)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_term (
    term_key    {{identity}},
    term_months INTEGER NOT NULL,
    UNIQUE (term_months)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_home_ownership (
    home_ownership_key  {{identity}},
    home_ownership_code VARCHAR(64) NOT NULL,
    UNIQUE (home_ownership_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_employment_length (
    employment_length_key {{identity}},
    years                 INTEGER NULL,
    original_text         VARCHAR(64) NOT NULL,
    UNIQUE (original_text)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_loan_status (
    loan_status_key  {{identity}},
    loan_status_code VARCHAR(128) NOT NULL,
    UNIQUE (loan_status_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_settlement_status (
    settlement_status_key  {{identity}},
    settlement_status_code VARCHAR(64) NOT NULL,
    UNIQUE (settlement_status_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_type (
    hardship_type_key  {{identity}},
    hardship_type_code VARCHAR(64) NOT NULL,
    UNIQUE (hardship_type_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_status (
    hardship_status_key  {{identity}},
    hardship_status_code VARCHAR(64) NOT NULL,
    UNIQUE (hardship_status_code)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_hardship_loan_status (
    hardship_loan_status_key  {{identity}},
    hardship_loan_status_code VARCHAR(64) NOT NULL,
    UNIQUE (hardship_loan_status_code)
);

-- Derived dimensions
CREATE TABLE IF NOT EXISTS {{schema}}.dim_location (
    location_key {{identity}},
    state_code   VARCHAR(2) NULL,
    zip3         VARCHAR(3) NULL,
    UNIQUE (state_code, zip3)
);

CREATE TABLE IF NOT EXISTS {{schema}}.dim_date (
    date_id      INTEGER PRIMARY KEY,
    full_date    DATE NOT NULL,
    year         INTEGER NOT NULL,
    quarter      INTEGER NOT NULL,
    quarter_name VARCHAR(2) NOT NULL,
    month        INTEGER NOT NULL,
    month_name   VARCHAR(9) NOT NULL,
    day          INTEGER NOT NULL,
    day_of_week  INTEGER NOT NULL,
    day_name     VARCHAR(9) NOT NULL,
    week_of_year INTEGER NOT NULL,
    UNIQUE (full_date)
);

-- Facts
CREATE TABLE IF NOT EXISTS {{schema}}.fact_originations (
    loan_id                 BIGINT PRIMARY KEY,
    application_id          BIGINT NOT NULL,
    application_date_id     INTEGER NULL,
    decision_date_id        INTEGER NULL,
    purpose_key             INTEGER NULL,
    application_type_key    INTEGER NULL,
    verification_status_key INTEGER NULL,
    policy_code_key         INTEGER NULL,
    disbursement_method_key INTEGER NULL,
    grade_key               INTEGER NULL,
    sub_grade_key           INTEGER NULL,
    term_key                INTEGER NULL,
    home_ownership_key      INTEGER NULL,
    employment_length_key   INTEGER NULL,
    location_key            INTEGER NULL,
    requested_amount        DECIMAL(12,2) NULL,
    funded_amount           DECIMAL(12,2) NULL,
    funded_amount_inv       DECIMAL(12,2) NULL,
    installment             DECIMAL(10,2) NULL,
    int_rate                DECIMAL(6,3) NULL,
    annual_inc              DECIMAL(14,2) NULL,
    annual_inc_joint        DECIMAL(14,2) NULL,
    dti                     DECIMAL(7,2) NULL,
    dti_joint               DECIMAL(7,2) NULL,
    inq_last_6mths          INTEGER NULL,
    delinq_2yrs             INTEGER NULL,
    mths_since_last_delinq  INTEGER NULL,
    mths_since_recent_inq   INTEGER NULL,
    pub_rec                 INTEGER NULL,
    total_acc               INTEGER NULL,
    open_acc                INTEGER NULL,
    revol_bal               DECIMAL(14,2) NULL,
    revol_util              DECIMAL(6,2) NULL,
    FOREIGN KEY (application_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (decision_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (purpose_key) REFERENCES {{schema}}.dim_purpose (purpose_key),
    FOREIGN KEY (application_type_key) REFERENCES {{schema}}.dim_application_type (application_type_key),
    FOREIGN KEY (verification_status_key) REFERENCES {{schema}}.dim_verification_status (verification_status_key),
    FOREIGN KEY (policy_code_key) REFERENCES {{schema}}.dim_policy_code (policy_code_key),
    FOREIGN KEY (disbursement_method_key) REFERENCES {{schema}}.dim_disbursement_method (disbursement_method_key),
    FOREIGN KEY (grade_key) REFERENCES {{schema}}.dim_grade (grade_key),
    FOREIGN KEY (sub_grade_key) REFERENCES {{schema}}.dim_sub_grade (sub_grade_key),
    FOREIGN KEY (term_key) REFERENCES {{schema}}.dim_term (term_key),
    FOREIGN KEY (home_ownership_key) REFERENCES {{schema}}.dim_home_ownership (home_ownership_key),
    FOREIGN KEY (employment_length_key) REFERENCES {{schema}}.dim_employment_length (employment_length_key),
    FOREIGN KEY (location_key) REFERENCES {{schema}}.dim_location (location_key)
);

CREATE TABLE IF NOT EXISTS {{schema}}.fact_performance_snapshot (
    loan_id                    BIGINT PRIMARY KEY,
    loan_status_key            INTEGER NULL,
    last_payment_date_id       INTEGER NULL,
    next_payment_date_id       INTEGER NULL,
    last_pymnt_amnt            DECIMAL(12,2) NULL,
    total_pymnt                DECIMAL(14,2) NULL,
    total_pymnt_inv            DECIMAL(14,2) NULL,
    total_rec_prncp            DECIMAL(14,2) NULL,
    total_rec_int              DECIMAL(14,2) NULL,
    total_rec_late_fee         DECIMAL(12,2) NULL,
    recoveries                 DECIMAL(12,2) NULL,
    collection_recovery_fee    DECIMAL(12,2) NULL,
    out_prncp                  DECIMAL(14,2) NULL,
    out_prncp_inv              DECIMAL(14,2) NULL,
    pymnt_plan                 VARCHAR(1) NULL,
    settlement_status_key      INTEGER NULL,
    debt_settlement_flag       VARCHAR(1) NULL,
    settlement_amount          DECIMAL(12,2) NULL,
    settlement_percentage      DECIMAL(6,2) NULL,
    settlement_date_id         INTEGER NULL,
    hardship_type_key          INTEGER NULL,
    hardship_status_key        INTEGER NULL,
    hardship_loan_status_key   INTEGER NULL,
    hardship_amount            DECIMAL(12,2) NULL,
    hardship_start_date_id     INTEGER NULL,
    hardship_end_date_id       INTEGER NULL,
    payment_plan_start_date_id INTEGER NULL,
    deferral_term              INTEGER NULL,
    hardship_length            INTEGER NULL,
    hardship_dpd               INTEGER NULL,
    FOREIGN KEY (loan_status_key) REFERENCES {{schema}}.dim_loan_status (loan_status_key),
    FOREIGN KEY (settlement_status_key) REFERENCES {{schema}}.dim_settlement_status (settlement_status_key),
    FOREIGN KEY (hardship_type_key) REFERENCES {{schema}}.dim_hardship_type (hardship_type_key),
    FOREIGN KEY (hardship_status_key) REFERENCES {{schema}}.dim_hardship_status (hardship_status_key),
    FOREIGN KEY (hardship_loan_status_key) REFERENCES {{schema}}.dim_hardship_loan_status (hardship_loan_status_key),
    FOREIGN KEY (last_payment_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (next_payment_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (settlement_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (hardship_start_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (hardship_end_date_id) REFERENCES {{schema}}.dim_date (date_id),
    FOREIGN KEY (payment_plan_start_date_id) REFERENCES {{schema}}.dim_date (date_id)
);
`
